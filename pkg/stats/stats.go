package stats

import (
	"strings"
	"time"
)

// DownloadAssetSuffix marks the assets whose download counters feed the chart.
const DownloadAssetSuffix = "zip"

type Asset struct {
	Name          string
	DownloadCount int
}

type Release struct {
	TagName     string
	URL         string
	PublishedAt time.Time
	Assets      []*Asset
}

// ZipDownloads returns the download counters of all assets ending in
// DownloadAssetSuffix, in asset order.
func (r *Release) ZipDownloads() []int {
	ret := make([]int, 0)
	for _, a := range r.Assets {
		if a == nil || !strings.HasSuffix(a.Name, DownloadAssetSuffix) {
			continue
		}
		ret = append(ret, max(a.DownloadCount, 0))
	}
	return ret
}

// Downloads is the numeric total of ZipDownloads.
func (r *Release) Downloads() int {
	total := 0
	for _, d := range r.ZipDownloads() {
		total += d
	}
	return total
}

type Point struct {
	Label     string
	Downloads int
}

type Bounds struct {
	Min int
	Max int
}

// Series is the ordered (oldest first) list of chart points. Its bounds are
// only defined when the series has at least one point.
type Series struct {
	Points []Point
	bounds *Bounds
}

func (s *Series) add(p Point) {
	s.Points = append(s.Points, p)
	if s.bounds == nil {
		s.bounds = &Bounds{Min: p.Downloads, Max: p.Downloads}
		return
	}
	s.bounds.Min = min(s.bounds.Min, p.Downloads)
	s.bounds.Max = max(s.bounds.Max, p.Downloads)
}

func (s *Series) Len() int {
	return len(s.Points)
}

func (s *Series) Empty() bool {
	return len(s.Points) == 0
}

// Bounds returns the min/max downloads of the series. ok is false for an
// empty series.
func (s *Series) Bounds() (b Bounds, ok bool) {
	if s.bounds == nil {
		return Bounds{}, false
	}
	return *s.bounds, true
}

func (s *Series) Labels() []string {
	ret := make([]string, len(s.Points))
	for i, p := range s.Points {
		ret[i] = p.Label
	}
	return ret
}

func (s *Series) Values() []int {
	ret := make([]int, len(s.Points))
	for i, p := range s.Points {
		ret[i] = p.Downloads
	}
	return ret
}
