package plugin

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v59/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/require"
)

func zipAsset(name string, downloads int) *github.ReleaseAsset {
	return &github.ReleaseAsset{Name: github.String(name), DownloadCount: github.Int(downloads)}
}

func TestFetchReleases(t *testing.T) {
	published := github.Timestamp{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatch(
			mock.GetReposReleasesByOwnerByRepo,
			[]*github.RepositoryRelease{
				{
					TagName:     github.String("1.1.0"),
					PublishedAt: &published,
					HTMLURL:     github.String("https://github.com/owner/repo/releases/tag/1.1.0"),
					Assets:      []*github.ReleaseAsset{zipAsset("nf-x-1.1.0.zip", 42), zipAsset("nf-x-1.1.0-meta.json", 3)},
				},
				{Draft: github.Bool(true), TagName: github.String("1.2.0-rc")},
				{TagName: github.String("1.0.0")},
			},
		),
	)
	ghClient := github.NewClient(mockedHTTPClient)
	releases, err := FetchReleases(context.Background(), ghClient, "owner", "repo")
	require.NoError(t, err)
	require.Len(t, releases, 2)
	require.Equal(t, "1.1.0", releases[0].TagName)
	require.Equal(t, published.Time, releases[0].PublishedAt.UTC())
	require.Equal(t, "https://github.com/owner/repo/releases/tag/1.1.0", releases[0].URL)
	require.Len(t, releases[0].Assets, 2)
	require.Equal(t, 42, releases[0].Downloads())
	require.Equal(t, "1.0.0", releases[1].TagName)
	require.Empty(t, releases[1].Assets)
}

func TestFetchReleasesPaginated(t *testing.T) {
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchPages(
			mock.GetReposReleasesByOwnerByRepo,
			[]*github.RepositoryRelease{{TagName: github.String("2.0.0")}, {TagName: github.String("1.1.0")}},
			[]*github.RepositoryRelease{{TagName: github.String("1.0.0")}},
		),
	)
	ghClient := github.NewClient(mockedHTTPClient)
	releases, err := FetchReleases(context.Background(), ghClient, "owner", "repo")
	require.NoError(t, err)
	foundTags := make([]string, len(releases))
	for i, r := range releases {
		foundTags[i] = r.TagName
	}
	require.Equal(t, []string{"2.0.0", "1.1.0", "1.0.0"}, foundTags)
}

func TestFetchReleasesErrorPayload(t *testing.T) {
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposReleasesByOwnerByRepo,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com/rest"}`))
			}),
		),
	)
	ghClient := github.NewClient(mockedHTTPClient)
	_, err := FetchReleases(context.Background(), ghClient, "owner", "missing")
	require.Error(t, err)

	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	require.Equal(t, "missing", payloadErr.Repo)
	require.Contains(t, payloadErr.Payload, `"message":"Not Found"`)
	require.ErrorContains(t, err, "no release list for owner/missing")

	var errResp *github.ErrorResponse
	require.ErrorAs(t, err, &errResp)
}

func newPayloadServer(status int, header http.Header, body string) *github.Client {
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposReleasesByOwnerByRepo,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range header {
					w.Header()[k] = v
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
			}),
		),
	)
	return github.NewClient(mockedHTTPClient)
}

func TestFetchReleasesUnexpectedShape(t *testing.T) {
	for _, body := range []string{`{"message":"Bad credentials"}`, `null`} {
		ghClient := newPayloadServer(http.StatusOK, nil, body)
		_, err := FetchReleases(context.Background(), ghClient, "owner", "repo")
		var payloadErr *PayloadError
		require.ErrorAs(t, err, &payloadErr)
		require.ErrorIs(t, err, errNoReleaseList)
		require.Equal(t, body, payloadErr.Payload)
		require.Equal(t, "owner", payloadErr.Owner)
	}
}

func TestFetchReleasesRateLimited(t *testing.T) {
	header := http.Header{}
	header.Set("X-RateLimit-Limit", "5000")
	header.Set("X-RateLimit-Remaining", "0")
	header.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	body := `{"message":"API rate limit exceeded for user ID 1."}`
	ghClient := newPayloadServer(http.StatusForbidden, header, body)

	_, err := FetchReleases(context.Background(), ghClient, "owner", "repo")
	var rateErr *github.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	require.Equal(t, body, payloadErr.Payload)
}

func TestFetchReleasesSecondaryRateLimited(t *testing.T) {
	body := `{"message":"You have exceeded a secondary rate limit.","documentation_url":"https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`
	ghClient := newPayloadServer(http.StatusForbidden, nil, body)

	_, err := FetchReleases(context.Background(), ghClient, "owner", "repo")
	var abuseErr *github.AbuseRateLimitError
	require.ErrorAs(t, err, &abuseErr)
	var payloadErr *PayloadError
	require.ErrorAs(t, err, &payloadErr)
	require.Contains(t, payloadErr.Payload, "secondary rate limit")
}
