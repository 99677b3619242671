// Package normalize maps raw catalog records onto canonical rows.
// Every function is pure: records missing their required id are skipped
// and counted, everything else yields exactly one row.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/xtream"
)

// Result holds the rows produced from one listing and the number of records skipped.
type Result[T any] struct {
	Rows    []T
	Skipped int
}

// Categories maps a category listing, tagging every row with kind.
func Categories(raw []xtream.RawCategory, kind domain.Kind) Result[domain.Category] {
	res := Result[domain.Category]{Rows: make([]domain.Category, 0, len(raw))}
	for _, r := range raw {
		id := clean(r.CategoryID)
		if id == "" {
			res.Skipped++
			continue
		}
		parent := clean(r.ParentID)
		if parent == "" {
			parent = constants.RootCategoryID
		}
		res.Rows = append(res.Rows, domain.Category{
			ID:       id,
			Name:     clean(r.CategoryName),
			Type:     kind,
			ParentID: parent,
		})
	}
	return res
}

// Channels maps a live stream listing. The row id is the stream id.
func Channels(raw []xtream.RawLiveStream) Result[domain.Channel] {
	res := Result[domain.Channel]{Rows: make([]domain.Channel, 0, len(raw))}
	for _, r := range raw {
		id := clean(r.StreamID)
		if id == "" {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, domain.Channel{
			ID:         id,
			Name:       clean(r.Name),
			CategoryID: clean(r.CategoryID),
			StreamID:   id,
			Logo:       clean(r.StreamIcon),
			EPGID:      clean(r.EPGChannelID),
		})
	}
	return res
}

// Movies maps a VOD listing.
func Movies(raw []xtream.RawVODStream) Result[domain.Movie] {
	res := Result[domain.Movie]{Rows: make([]domain.Movie, 0, len(raw))}
	for _, r := range raw {
		id := clean(r.StreamID)
		if id == "" {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, domain.Movie{
			ID:         id,
			Name:       clean(r.Name),
			CategoryID: clean(r.CategoryID),
			StreamID:   id,
			Logo:       clean(r.StreamIcon),
			Rating:     Rating(r.Rating),
			AddedDate:  clean(r.Added),
		})
	}
	return res
}

// Series maps a series listing. The row id is the series id.
func Series(raw []xtream.RawSeries) Result[domain.Series] {
	res := Result[domain.Series]{Rows: make([]domain.Series, 0, len(raw))}
	for _, r := range raw {
		id := clean(r.SeriesID)
		if id == "" {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, domain.Series{
			ID:         id,
			Name:       clean(r.Name),
			CategoryID: clean(r.CategoryID),
			SeriesID:   id,
			Logo:       clean(r.Cover),
			Rating:     Rating(r.Rating),
			Plot:       string(r.Plot),
		})
	}
	return res
}

// Rating parses a numeric or numeric-string rating. Anything else is 0.
func Rating(v xtream.FlexString) float64 {
	s := clean(v)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func clean(v xtream.FlexString) string {
	return strings.TrimSpace(string(v))
}
