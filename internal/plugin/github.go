package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v59/github"
	"github.com/incsteps/nf-plugins-stats/pkg/stats"
)

// PayloadError is returned when the releases endpoint does not answer with a
// list of releases. Payload holds the raw response body if it was available.
type PayloadError struct {
	Owner   string
	Repo    string
	Payload string
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("no release list for %s/%s: %v", e.Owner, e.Repo, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

const releasesPerPage = 100

var errNoReleaseList = errors.New("response has no release list")

func readPayload(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(data)
}

// rawPayload recovers the response body from go-github errors. CheckResponse
// puts the body back after reading it, so it can be read again here.
func rawPayload(err error) string {
	var (
		errResp        *github.ErrorResponse
		rateErr        *github.RateLimitError
		abuseErr       *github.AbuseRateLimitError
		payload        string
		fallbackReason string
	)
	switch {
	case errors.As(err, &rateErr):
		payload, fallbackReason = readPayload(rateErr.Response), rateErr.Message
	case errors.As(err, &abuseErr):
		payload, fallbackReason = readPayload(abuseErr.Response), abuseErr.Message
	case errors.As(err, &errResp):
		payload, fallbackReason = readPayload(errResp.Response), errResp.Message
	}
	if payload != "" {
		return payload
	}
	return fallbackReason
}

func fetchReleasePage(ctx context.Context, ghClient *github.Client, owner, repo string, page int) ([]*github.RepositoryRelease, *github.Response, error) {
	u := fmt.Sprintf("repos/%v/%v/releases?per_page=%d&page=%d", owner, repo, releasesPerPage, page)
	req, err := ghClient.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create release request for %s/%s: %w", owner, repo, err)
	}
	resp, err := ghClient.BareDo(ctx, req)
	if err != nil {
		return nil, resp, &PayloadError{Owner: owner, Repo: repo, Payload: rawPayload(err), Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, &PayloadError{Owner: owner, Repo: repo, Err: err}
	}
	var releases []*github.RepositoryRelease
	if err := json.Unmarshal(data, &releases); err != nil {
		return nil, resp, &PayloadError{Owner: owner, Repo: repo, Payload: string(data), Err: fmt.Errorf("%w: %w", errNoReleaseList, err)}
	}
	if releases == nil {
		return nil, resp, &PayloadError{Owner: owner, Repo: repo, Payload: string(data), Err: errNoReleaseList}
	}
	return releases, resp, nil
}

// FetchReleases returns the complete, non-draft release history of
// owner/repo, newest first. Any answer that is not a list of releases is
// reported as a *PayloadError carrying the raw body.
func FetchReleases(ctx context.Context, ghClient *github.Client, owner, repo string) ([]*stats.Release, error) {
	ret := make([]*stats.Release, 0)
	page := 1
	for {
		releases, resp, err := fetchReleasePage(ctx, ghClient, owner, repo, page)
		if err != nil {
			return nil, err
		}
		for _, release := range releases {
			// ignore drafts
			if release.GetDraft() {
				continue
			}
			ret = append(ret, toStatsRelease(release))
		}
		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return ret, nil
}

func toStatsRelease(ghr *github.RepositoryRelease) *stats.Release {
	assets := make([]*stats.Asset, 0, len(ghr.Assets))
	for _, a := range ghr.Assets {
		assets = append(assets, &stats.Asset{
			Name:          a.GetName(),
			DownloadCount: a.GetDownloadCount(),
		})
	}
	return &stats.Release{
		TagName:     ghr.GetTagName(),
		URL:         ghr.GetHTMLURL(),
		PublishedAt: ghr.GetPublishedAt().Time,
		Assets:      assets,
	}
}
