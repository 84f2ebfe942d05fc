package metrics

import (
	"fmt"

	"contrib.go.opencensus.io/exporter/stackdriver"
	"github.com/incsteps/nf-plugins-stats/internal/config"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	CounterPluginsGenerated = stats.Int64("plugins_generated", "Number of generated plugin pages", "1")
	CounterPluginsSkipped   = stats.Int64("plugins_skipped", "Number of skipped plugins", "1")
	CounterReadmeFallbacks  = stats.Int64("readme_fallbacks", "Number of plugin pages rendered with a readme notice", "1")
	CounterCacheHit         = stats.Int64("cache_hits", "Number of cache hits", "1")
	CounterCacheMiss        = stats.Int64("cache_misses", "Number of cache misses", "1")

	TagReason   = tag.MustNewKey("reason")
	TagCacheKey = tag.MustNewKey("cache_key")
)

var Views = []*view.View{
	{
		Name:        "plugins_generated",
		Measure:     CounterPluginsGenerated,
		Description: "Number of generated plugin pages",
		Aggregation: view.Count(),
	},
	{
		Name:        "plugins_skipped",
		Measure:     CounterPluginsSkipped,
		Description: "Number of skipped plugins",
		TagKeys:     []tag.Key{TagReason},
		Aggregation: view.Count(),
	},
	{
		Name:        "readme_fallbacks",
		Measure:     CounterReadmeFallbacks,
		Description: "Number of plugin pages rendered with a readme notice",
		TagKeys:     []tag.Key{TagReason},
		Aggregation: view.Count(),
	},
	{
		Name:        "cache_hits",
		Measure:     CounterCacheHit,
		Description: "Number of cache hits",
		TagKeys:     []tag.Key{TagCacheKey},
		Aggregation: view.Count(),
	},
	{
		Name:        "cache_misses",
		Measure:     CounterCacheMiss,
		Description: "Number of cache misses",
		TagKeys:     []tag.Key{TagCacheKey},
		Aggregation: view.Count(),
	},
}

func RegisterViews() error {
	return view.Register(Views...)
}

func NewExporter(cfg *config.GeneratorConfig) (*stackdriver.Exporter, error) {
	err := RegisterViews()
	if err != nil {
		return nil, err
	}
	exporter, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:    cfg.ProjectID,
		MetricPrefix: fmt.Sprintf("nf-plugins-stats/%s", cfg.Stage),
	})
	if err != nil {
		return nil, err
	}
	err = exporter.StartMetricsExporter()
	if err != nil {
		return nil, err
	}
	return exporter, nil
}
