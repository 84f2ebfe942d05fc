package render

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/incsteps/nf-plugins-stats/internal/content"
	"github.com/incsteps/nf-plugins-stats/internal/taxonomy"
	"github.com/incsteps/nf-plugins-stats/pkg/stats"
	"gopkg.in/yaml.v3"
)

//go:embed templates
var templates embed.FS

var funcs = template.FuncMap{
	"labels": func(s *stats.Series) string {
		quoted := make([]string, 0, s.Len())
		for _, l := range s.Labels() {
			quoted = append(quoted, strconv.Quote(l))
		}
		return strings.Join(quoted, ", ")
	},
	"values": func(s *stats.Series) string {
		values := make([]string, 0, s.Len())
		for _, v := range s.Values() {
			values = append(values, strconv.Itoa(v))
		}
		return strings.Join(values, ", ")
	},
	// nil for an empty series, which drops the y-axis range
	"bounds": func(s *stats.Series) *stats.Bounds {
		b, ok := s.Bounds()
		if !ok {
			return nil
		}
		return &b
	},
}

var pluginTemplate = template.Must(template.New("plugin.md.tmpl").Funcs(funcs).ParseFS(templates, "templates/plugin.md.tmpl"))

type FrontMatter struct {
	Title string   `yaml:"title"`
	Draft *bool    `yaml:"draft,omitempty"`
	Date  string   `yaml:"date,omitempty"`
	Tags  []string `yaml:"tags,omitempty"`
}

func (f *FrontMatter) Render() (string, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	return "---\n" + string(out) + "---\n", nil
}

func newFalse() *bool {
	b := false
	return &b
}

type pluginPage struct {
	PluginID string
	Header   string
	Readme   string
	Series   *stats.Series
}

// Plugin renders the page of a single plugin to <group-slug>/<pluginID>.md.
func Plugin(pluginID string, group *taxonomy.Group, readme string, series *stats.Series, date string) (*content.Document, error) {
	if series == nil {
		series = &stats.Series{}
	}
	fm := &FrontMatter{Title: pluginID, Draft: newFalse(), Date: date}
	groupName := ""
	if group != nil {
		groupName = group.Name
	}
	if groupName != "" {
		fm.Tags = []string{groupName}
	}
	header, err := fm.Render()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = pluginTemplate.Execute(&buf, &pluginPage{
		PluginID: pluginID,
		Header:   header,
		Readme:   readme,
		Series:   series,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render plugin %s: %w", pluginID, err)
	}
	return content.NewDocument(buf.Bytes(), taxonomy.Slug(groupName), pluginID+".md")
}

// GroupIndex renders <group-slug>/index.md.
func GroupIndex(group *taxonomy.Group) (*content.Document, error) {
	header, err := (&FrontMatter{Title: group.Name}).Render()
	if err != nil {
		return nil, err
	}
	return content.NewDocument([]byte(header), group.Slug(), "index.md")
}

// Index renders the top level index.md.
func Index() (*content.Document, error) {
	body, err := templates.ReadFile("templates/index.md")
	if err != nil {
		return nil, err
	}
	header, err := (&FrontMatter{Title: "Welcome", Draft: newFalse()}).Render()
	if err != nil {
		return nil, err
	}
	return content.NewDocument(append([]byte(header+"\n"), body...), "index.md")
}
