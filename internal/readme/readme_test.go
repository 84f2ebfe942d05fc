package readme

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	pathMasterUpper = "/owner/repo/refs/heads/master/README.md"
	pathMasterLower = "/owner/repo/refs/heads/master/readme.md"
	pathMainUpper   = "/owner/repo/refs/heads/main/README.md"
	pathMainLower   = "/owner/repo/refs/heads/main/readme.md"
)

// readmeServer answers the listed paths with their body, hijacks and closes
// the connection for paths in faults and answers 404 otherwise.
type readmeServer struct {
	*httptest.Server
	mu        sync.Mutex
	requested []string
}

func newReadmeServer(bodies map[string]string, faults ...string) *readmeServer {
	rs := &readmeServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		if !slices.Contains(rs.requested, r.URL.Path) {
			rs.requested = append(rs.requested, r.URL.Path)
		}
		rs.mu.Unlock()
		if slices.Contains(faults, r.URL.Path) {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "404: Not Found")
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	return rs
}

func (rs *readmeServer) paths() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return slices.Clone(rs.requested)
}

func newTestResolver(baseURL string, timeout time.Duration) *Resolver {
	log := logrus.New()
	log.Out = io.Discard
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 0
	client.HTTPClient.Timeout = timeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return NewResolver(log, client, baseURL)
}

func TestResolveFirstCandidate(t *testing.T) {
	ts := newReadmeServer(map[string]string{
		pathMasterUpper: "# master",
		pathMainUpper:   "# main",
	})
	defer ts.Close()

	res := newTestResolver(ts.URL, time.Second).Resolve(context.Background(), "nf-test", "owner", "repo")
	require.Equal(t, "# master", res.Text)
	require.Equal(t, ts.URL+pathMasterUpper, res.URL)
	require.False(t, res.Fallback())
	require.NoError(t, res.Fault)
	require.Equal(t, []string{pathMasterUpper}, ts.paths())
}

func TestResolveThirdCandidate(t *testing.T) {
	ts := newReadmeServer(map[string]string{
		pathMainUpper: "# third",
		pathMainLower: "# fourth",
	})
	defer ts.Close()

	res := newTestResolver(ts.URL, time.Second).Resolve(context.Background(), "nf-test", "owner", "repo")
	require.Equal(t, "# third", res.Text)
	require.Equal(t, []string{pathMasterUpper, pathMasterLower, pathMainUpper}, ts.paths())
}

func TestResolveFaultShortCircuits(t *testing.T) {
	ts := newReadmeServer(map[string]string{
		pathMainUpper: "# never read",
	}, pathMasterLower)
	defer ts.Close()

	res := newTestResolver(ts.URL, time.Second).Resolve(context.Background(), "nf-test", "owner", "repo")
	require.True(t, res.Fallback())
	require.Error(t, res.Fault)
	require.Equal(t, UnavailableNotice("nf-test", "https://github.com/owner/repo"), res.Text)
	require.Contains(t, res.Text, "**nf-test**")
	require.Contains(t, res.Text, "(https://github.com/owner/repo)")
	require.Equal(t, []string{pathMasterUpper, pathMasterLower}, ts.paths())
}

func TestResolveUnreachableHost(t *testing.T) {
	ts := newReadmeServer(nil)
	baseURL := ts.URL
	ts.Close()

	res := newTestResolver(baseURL, time.Second).Resolve(context.Background(), "nf-test", "owner", "repo")
	require.True(t, res.Fallback())
	require.Error(t, res.Fault)
	require.Equal(t, UnavailableNotice("nf-test", "https://github.com/owner/repo"), res.Text)
}

func TestResolveTimeoutIsFault(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	res := newTestResolver(ts.URL, 50*time.Millisecond).Resolve(context.Background(), "nf-test", "owner", "repo")
	require.True(t, res.Fallback())
	require.Error(t, res.Fault)
}

func TestResolveNoCandidateFound(t *testing.T) {
	ts := newReadmeServer(nil)
	defer ts.Close()

	res := newTestResolver(ts.URL, time.Second).Resolve(context.Background(), "nf-test", "owner", "repo")
	require.True(t, res.Fallback())
	require.NoError(t, res.Fault)
	require.Equal(t, MissingNotice("nf-test", "https://github.com/owner/repo"), res.Text)
	require.Equal(t, []string{pathMasterUpper, pathMasterLower, pathMainUpper, pathMainLower}, ts.paths())
}
