package domain

import (
	"fmt"
)

// Kind is the content kind a category belongs to.
type Kind string

const (
	KindLive   Kind = "live"
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Kinds lists every kind in sync order.
var Kinds = []Kind{KindLive, KindMovie, KindSeries}

func (k Kind) Valid() bool {
	switch k {
	case KindLive, KindMovie, KindSeries:
		return true
	}
	return false
}

// ParseKind accepts the canonical names plus the remote aliases ("vod").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "live":
		return KindLive, nil
	case "movie", "vod":
		return KindMovie, nil
	case "series":
		return KindSeries, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Profile is the credential set for one remote catalog account.
type Profile struct {
	URL        string  `json:"url" db:"url"`
	Username   string  `json:"username" db:"username"`
	Password   string  `json:"-" db:"password"`
	ServerInfo RawJSON `json:"server_info,omitempty" db:"server_info"`
}

// Category groups channels, movies or series.
type Category struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Type     Kind   `json:"type" db:"type"`
	ParentID string `json:"parent_id" db:"parent_id"`
}

// Channel is a live stream. ID and StreamID always carry the same value.
type Channel struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	CategoryID string `json:"category_id" db:"category_id"`
	StreamID   string `json:"stream_id" db:"stream_id"`
	Logo       string `json:"logo" db:"logo"`
	EPGID      string `json:"epg_id" db:"epg_id"`
}

// Movie is a video-on-demand entry.
type Movie struct {
	ID         string  `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	CategoryID string  `json:"category_id" db:"category_id"`
	StreamID   string  `json:"stream_id" db:"stream_id"`
	Logo       string  `json:"logo" db:"logo"`
	Rating     float64 `json:"rating" db:"rating"`
	AddedDate  string  `json:"added_date" db:"added_date"`
}

// Series is a show; episodes are not mirrored.
type Series struct {
	ID         string  `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	CategoryID string  `json:"category_id" db:"category_id"`
	SeriesID   string  `json:"series_id" db:"series_id"`
	Logo       string  `json:"logo" db:"logo"`
	Rating     float64 `json:"rating" db:"rating"`
	Plot       string  `json:"plot" db:"plot"`
}
