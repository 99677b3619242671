package xtream

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/streamhub/internal/domain"
)

// FlexString decodes a JSON string, number or null into a string.
// Panels disagree on whether ids are quoted, so every id field uses it.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return err
		}
		*f = FlexString(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(formatNumber(n))
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// formatNumber drops a trailing ".0" so 12 and 12.0 map to the same id.
func formatNumber(n json.Number) string {
	s := n.String()
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if fl, err := n.Float64(); err == nil && fl == float64(int64(fl)) {
		return strconv.FormatInt(int64(fl), 10)
	}
	return s
}

// UserInfo is the account block of a get_profile response.
type UserInfo struct {
	Username       FlexString `json:"username"`
	Status         FlexString `json:"status"`
	Auth           FlexString `json:"auth"`
	ExpDate        FlexString `json:"exp_date"`
	MaxConnections FlexString `json:"max_connections"`
}

// ServerInfo is the server block of a get_profile response.
type ServerInfo struct {
	URL            FlexString `json:"url"`
	Port           FlexString `json:"port"`
	HTTPSPort      FlexString `json:"https_port"`
	ServerProtocol FlexString `json:"server_protocol"`
	Timezone       FlexString `json:"timezone"`
}

// Account is the decoded get_profile response. Raw keeps the full body for persistence.
type Account struct {
	UserInfo   UserInfo       `json:"user_info"`
	ServerInfo ServerInfo     `json:"server_info"`
	Raw        domain.RawJSON `json:"-"`
}

// RawCategory is one entry of a get_*_categories listing.
type RawCategory struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName FlexString `json:"category_name"`
	ParentID     FlexString `json:"parent_id"`
}

// RawLiveStream is one entry of get_live_streams.
type RawLiveStream struct {
	StreamID     FlexString `json:"stream_id"`
	Name         FlexString `json:"name"`
	CategoryID   FlexString `json:"category_id"`
	StreamIcon   FlexString `json:"stream_icon"`
	EPGChannelID FlexString `json:"epg_channel_id"`
}

// RawVODStream is one entry of get_vod_streams.
type RawVODStream struct {
	StreamID   FlexString `json:"stream_id"`
	Name       FlexString `json:"name"`
	CategoryID FlexString `json:"category_id"`
	StreamIcon FlexString `json:"stream_icon"`
	Rating     FlexString `json:"rating"`
	Added      FlexString `json:"added"`
}

// RawSeries is one entry of get_series.
type RawSeries struct {
	SeriesID   FlexString `json:"series_id"`
	Name       FlexString `json:"name"`
	CategoryID FlexString `json:"category_id"`
	Cover      FlexString `json:"cover"`
	Rating     FlexString `json:"rating"`
	Plot       FlexString `json:"plot"`
}

// Items is the result of GetItems. Only the slice matching Kind is set.
type Items struct {
	Kind   domain.Kind
	Live   []RawLiveStream
	Movies []RawVODStream
	Series []RawSeries
}

// Len returns the number of records of the populated kind.
func (i Items) Len() int {
	switch i.Kind {
	case domain.KindLive:
		return len(i.Live)
	case domain.KindMovie:
		return len(i.Movies)
	case domain.KindSeries:
		return len(i.Series)
	}
	return 0
}
