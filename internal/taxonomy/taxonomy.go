package taxonomy

import (
	"slices"
	"strings"
)

// OthersName is the implicit group of plugins not listed in any group.
const OthersName = "Others"

type Group struct {
	Name    string
	Members []string
}

// Slug returns the path segment of the group.
func (g *Group) Slug() string {
	return Slug(g.Name)
}

func (g *Group) Has(pluginID string) bool {
	return slices.Contains(g.Members, pluginID)
}

type Groups []*Group

// Resolve returns the first group, in declaration order, that lists
// pluginID. Unlisted plugins resolve to the Others group.
func (l Groups) Resolve(pluginID string) *Group {
	for _, g := range l {
		if g.Has(pluginID) {
			return g
		}
	}
	if others := l.Find(OthersName); others != nil {
		return others
	}
	return &Group{Name: OthersName}
}

func (l Groups) Find(name string) *Group {
	for _, g := range l {
		if strings.EqualFold(g.Name, name) {
			return g
		}
	}
	return nil
}

// WithOthers returns the groups with the implicit Others group appended
// unless it is declared already.
func (l Groups) WithOthers() Groups {
	if l.Find(OthersName) != nil {
		return l
	}
	return append(slices.Clone(l), &Group{Name: OthersName})
}

// Slug lowercases name and replaces spaces with hyphens. An empty name maps
// to "others".
func Slug(name string) string {
	if name == "" {
		name = OthersName
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
