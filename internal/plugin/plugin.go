package plugin

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNoRepository = errors.New("plugin has no repository")

// Release is a release record of the plugin catalog.
type Release struct {
	Version   string `json:"version"`
	URL       string `json:"url"`
	Date      string `json:"date"`
	Sha512sum string `json:"sha512sum,omitempty"`
	Requires  string `json:"requires,omitempty"`
}

type Plugin struct {
	ID       string     `json:"id"`
	Releases []*Release `json:"releases"`
	// Readme is empty in the catalog and filled in while generating.
	Readme string `json:"readme"`
}

func (p *Plugin) latestRelease() *Release {
	for i := len(p.Releases) - 1; i >= 0; i-- {
		if p.Releases[i] != nil {
			return p.Releases[i]
		}
	}
	return nil
}

// OwnerRepo extracts owner and repository from the download URL of the most
// recent catalog release, e.g. https://github.com/<owner>/<repo>/releases/...
func (p *Plugin) OwnerRepo() (string, string, error) {
	release := p.latestRelease()
	if release == nil {
		return "", "", fmt.Errorf("%w: %s has no releases", ErrNoRepository, p.ID)
	}
	u, err := url.Parse(release.URL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrNoRepository, p.ID, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s: unexpected release url %q", ErrNoRepository, p.ID, release.URL)
	}
	return parts[0], parts[1], nil
}

// PublicationDate is the date of the most recent catalog release. Catalog
// releases are listed oldest first.
func (p *Plugin) PublicationDate() string {
	if release := p.latestRelease(); release != nil {
		return release.Date
	}
	return ""
}

func RepositoryURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s", owner, repo)
}

type Plugins []*Plugin

func (l Plugins) Find(id string) *Plugin {
	for _, p := range l {
		if p.ID == strings.ToLower(id) {
			return p
		}
	}
	return nil
}

// Filter returns the plugins with the given ids, in catalog order. Without
// ids the full list is returned.
func (l Plugins) Filter(ids ...string) Plugins {
	if len(ids) == 0 {
		return l
	}
	ret := make(Plugins, 0, len(ids))
	for _, p := range l {
		for _, id := range ids {
			if p.ID == strings.ToLower(id) {
				ret = append(ret, p)
				break
			}
		}
	}
	return ret
}
