package readme

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/incsteps/nf-plugins-stats/internal/plugin"
	"github.com/sirupsen/logrus"
)

type Candidate struct {
	Branch string
	File   string
}

func (c Candidate) String() string {
	return c.Branch + "/" + c.File
}

// Candidates are tried in this order.
var Candidates = []Candidate{
	{Branch: "master", File: "README.md"},
	{Branch: "master", File: "readme.md"},
	{Branch: "main", File: "README.md"},
	{Branch: "main", File: "readme.md"},
}

type Readme struct {
	Text string
	// URL of the candidate the text was read from, empty for notices.
	URL string
	// Fault is the transport error that cut the candidate chain short.
	Fault error
}

func (r *Readme) Fallback() bool {
	return r.URL == ""
}

type Resolver struct {
	log     *logrus.Logger
	client  *retryablehttp.Client
	baseURL string
}

// NewResolver returns a resolver that reads raw files below baseURL, e.g.
// https://raw.githubusercontent.com.
func NewResolver(log *logrus.Logger, client *retryablehttp.Client, baseURL string) *Resolver {
	return &Resolver{
		log:     log,
		client:  client,
		baseURL: baseURL,
	}
}

func (r *Resolver) candidateURL(owner, repo string, c Candidate) (string, error) {
	return url.JoinPath(r.baseURL, owner, repo, "refs/heads", c.Branch, c.File)
}

// fetch returns ok=false for a non-success response and an error only for
// transport faults.
func (r *Resolver) fetch(ctx context.Context, candidateURL string) (string, bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, candidateURL, nil)
	if err != nil {
		return "", false, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}
	return string(body), true, nil
}

// Resolve returns the first readme candidate that answers successfully. A
// transport fault stops the chain and yields an "unavailable" notice; if no
// candidate succeeds a "no documentation" notice is returned.
func (r *Resolver) Resolve(ctx context.Context, pluginID, owner, repo string) *Readme {
	log := r.log.WithFields(logrus.Fields{"plugin": pluginID, "repo": owner + "/" + repo})
	repoURL := plugin.RepositoryURL(owner, repo)
	for _, c := range Candidates {
		candidateURL, err := r.candidateURL(owner, repo, c)
		if err != nil {
			return &Readme{Text: UnavailableNotice(pluginID, repoURL), Fault: err}
		}
		text, ok, err := r.fetch(ctx, candidateURL)
		if err != nil {
			log.Warnf("could not fetch readme %s: %v", c, err)
			return &Readme{Text: UnavailableNotice(pluginID, repoURL), Fault: err}
		}
		if ok {
			log.Debugf("found readme %s", c)
			return &Readme{Text: text, URL: candidateURL}
		}
	}
	log.Warn("no readme found")
	return &Readme{Text: MissingNotice(pluginID, repoURL)}
}

func UnavailableNotice(pluginID, repoURL string) string {
	return fmt.Sprintf("**%s** readme is not available on GitHub. Please check the [plugin repository](%s) for more information.", pluginID, repoURL)
}

func MissingNotice(pluginID, repoURL string) string {
	return fmt.Sprintf("No documentation available for **%s**. Please check the [plugin repository](%s) for more information.", pluginID, repoURL)
}
