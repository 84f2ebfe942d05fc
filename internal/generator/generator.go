package generator

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v59/github"
	"github.com/incsteps/nf-plugins-stats/internal/content"
	"github.com/incsteps/nf-plugins-stats/internal/metrics"
	"github.com/incsteps/nf-plugins-stats/internal/plugin"
	"github.com/incsteps/nf-plugins-stats/internal/readme"
	"github.com/incsteps/nf-plugins-stats/internal/render"
	"github.com/incsteps/nf-plugins-stats/internal/taxonomy"
	"github.com/incsteps/nf-plugins-stats/pkg/stats"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	ocstats "go.opencensus.io/stats"
	"go.opencensus.io/tag"
)

const (
	skipReasonNoRepository  = "no-repository"
	skipReasonNoReleaseList = "no-release-list"
	skipReasonRender        = "render"
	skipReasonWrite         = "write"

	readmeReasonUnavailable = "unavailable"
	readmeReasonMissing     = "missing"
)

type Generator struct {
	log      *logrus.Logger
	ghClient *github.Client
	readme   *readme.Resolver
	groups   taxonomy.Groups
	sink     content.Sink
	cache    *cache.Cache
}

func New(log *logrus.Logger, ghClient *github.Client, resolver *readme.Resolver, groups taxonomy.Groups, sink content.Sink, cacheTTL time.Duration) *Generator {
	return &Generator{
		log:      log,
		ghClient: ghClient,
		readme:   resolver,
		groups:   groups.WithOthers(),
		sink:     sink,
		cache:    cache.New(cacheTTL, 2*cacheTTL),
	}
}

type Summary struct {
	Generated []string
	Skipped   []string
}

// Run generates the group indexes, one page per plugin in catalog order and
// the top level index. A failing plugin is logged and skipped; it never
// stops the remaining plugins.
func (g *Generator) Run(ctx context.Context, plugins plugin.Plugins) *Summary {
	summary := &Summary{Generated: make([]string, 0), Skipped: make([]string, 0)}

	for _, group := range g.groups {
		g.log.Infof("creating group %s", group.Name)
		doc, err := render.GroupIndex(group)
		g.writeDocument(ctx, doc, err)
	}

	for _, p := range plugins {
		if ctx.Err() != nil {
			g.log.Warnf("stopping before %s: %v", p.ID, ctx.Err())
			break
		}
		g.log.Infof("creating plugin %s", p.ID)
		reason, err := g.generatePlugin(ctx, p)
		if err != nil {
			g.skip(ctx, p.ID, reason, err)
			summary.Skipped = append(summary.Skipped, p.ID)
			continue
		}
		ocstats.Record(ctx, metrics.CounterPluginsGenerated.M(1))
		summary.Generated = append(summary.Generated, p.ID)
	}

	doc, err := render.Index()
	g.writeDocument(ctx, doc, err)
	return summary
}

func (g *Generator) writeDocument(ctx context.Context, doc *content.Document, err error) {
	if err == nil {
		err = g.sink.Write(ctx, doc)
	}
	if err != nil {
		g.log.Errorf("could not write document: %v", err)
	}
}

func (g *Generator) skip(ctx context.Context, pluginID, reason string, err error) {
	fields := logrus.Fields{"plugin": pluginID, "reason": reason}
	var payloadErr *plugin.PayloadError
	if errors.As(err, &payloadErr) {
		fields["payload"] = payloadErr.Payload
	}
	g.log.WithFields(fields).Warnf("no info for %s, skipping: %v", pluginID, err)

	ctx, _ = tag.New(ctx, tag.Upsert(metrics.TagReason, reason))
	ocstats.Record(ctx, metrics.CounterPluginsSkipped.M(1))
}

func (g *Generator) generatePlugin(ctx context.Context, p *plugin.Plugin) (string, error) {
	group := g.groups.Resolve(p.ID)
	owner, repo, err := p.OwnerRepo()
	if err != nil {
		return skipReasonNoRepository, err
	}

	rd := g.getReadme(ctx, p.ID, owner, repo)
	p.Readme = rd.Text

	releases, err := g.getReleases(ctx, owner, repo)
	if err != nil {
		return skipReasonNoReleaseList, err
	}

	series := stats.Rank(releases)
	doc, err := render.Plugin(p.ID, group, p.Readme, series, p.PublicationDate())
	if err != nil {
		return skipReasonRender, err
	}
	if err := g.sink.Write(ctx, doc); err != nil {
		return skipReasonWrite, err
	}
	g.log.WithFields(logrus.Fields{"plugin": p.ID, "path": doc.Path}).Infof("wrote %d releases to chart", series.Len())
	return "", nil
}

func (g *Generator) getReadme(ctx context.Context, pluginID, owner, repo string) *readme.Readme {
	key := getCacheKey(cacheKeyPrefixReadme, owner, repo)
	if cached, ok := g.getFromCache(ctx, key); ok {
		return cached.(*readme.Readme)
	}
	rd := g.readme.Resolve(ctx, pluginID, owner, repo)
	if !rd.Fallback() {
		// notices name the plugin and are not shared
		g.setInCache(key, rd)
		return rd
	}
	reason := readmeReasonMissing
	if rd.Fault != nil {
		reason = readmeReasonUnavailable
	}
	ctx, _ = tag.New(ctx, tag.Upsert(metrics.TagReason, reason))
	ocstats.Record(ctx, metrics.CounterReadmeFallbacks.M(1))
	return rd
}

func (g *Generator) getReleases(ctx context.Context, owner, repo string) ([]*stats.Release, error) {
	key := getCacheKey(cacheKeyPrefixReleases, owner, repo)
	if cached, ok := g.getFromCache(ctx, key); ok {
		return cached.([]*stats.Release), nil
	}
	releases, err := plugin.FetchReleases(ctx, g.ghClient, owner, repo)
	if err != nil {
		return nil, err
	}
	g.setInCache(key, releases)
	return releases, nil
}
