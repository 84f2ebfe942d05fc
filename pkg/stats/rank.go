package stats

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// MaxSeriesLength caps the number of releases shown in a chart.
const MaxSeriesLength = 10

// newer reports whether a sorts before b in recency order: dated releases
// first by publication date, then releases with a semver tag by version.
// Undated releases and unparsable tags sort last.
func newer(a, b *Release) bool {
	aDated, bDated := !a.PublishedAt.IsZero(), !b.PublishedAt.IsZero()
	if aDated != bDated {
		return aDated
	}
	if aDated && !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	av, aErr := semver.NewVersion(a.TagName)
	bv, bErr := semver.NewVersion(b.TagName)
	if (aErr == nil) != (bErr == nil) {
		return aErr == nil
	}
	if aErr != nil {
		return false
	}
	return av.GreaterThan(bv)
}

// Rank selects the MaxSeriesLength releases with the most zip downloads and
// returns them oldest first. Membership ties go to the more recent release.
func Rank(releases []*Release) *Series {
	byRecency := make([]*Release, 0, len(releases))
	for _, r := range releases {
		if r != nil {
			byRecency = append(byRecency, r)
		}
	}
	sort.SliceStable(byRecency, func(i, j int) bool {
		return newer(byRecency[i], byRecency[j])
	})

	downloads := make([]int, len(byRecency))
	selected := make([]int, len(byRecency))
	for i, r := range byRecency {
		downloads[i] = r.Downloads()
		selected[i] = i
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return downloads[selected[i]] > downloads[selected[j]]
	})
	if len(selected) > MaxSeriesLength {
		selected = selected[:MaxSeriesLength]
	}
	// back to newest first, then reversed below
	sort.Ints(selected)

	series := &Series{Points: make([]Point, 0, len(selected))}
	for i := len(selected) - 1; i >= 0; i-- {
		idx := selected[i]
		series.add(Point{Label: byRecency[idx].TagName, Downloads: downloads[idx]})
	}
	return series
}
