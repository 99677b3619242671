// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "8080"
	DefaultDBPath       = "streamhub.db"
	DefaultChunkSize    = 500
	DefaultHTTPTimeout  = 5 * time.Minute
	DefaultRequestRate  = 5.0 // requests per second against player_api.php
	DefaultRequestBurst = 2
	DefaultUserAgent    = "StreamHub/1.0"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultProxyHost    = "127.0.0.1"
	DefaultSyncInterval = time.Duration(0) // 0 disables scheduled re-sync
	DefaultSyncLockTTL  = 30 * time.Minute
)

// SQLite caps bound parameters per statement; chunks larger than this are rejected.
const MaxSQLiteParams = 32766

// Remote catalog
const (
	PlayerAPIPath    = "/player_api.php"
	RootCategoryID   = "0"
	ProxyPath        = "/proxy"
	ProxyQueryPrefix = "/proxy?url="
)

// Xtream actions
const (
	ActionGetProfile          = "get_profile"
	ActionGetLiveCategories   = "get_live_categories"
	ActionGetVODCategories    = "get_vod_categories"
	ActionGetSeriesCategories = "get_series_categories"
	ActionGetLiveStreams      = "get_live_streams"
	ActionGetVODStreams       = "get_vod_streams"
	ActionGetSeries           = "get_series"
)

// Sync progress percents, in emission order
const (
	PercentStart            = 0
	PercentAuthenticated    = 10
	PercentLiveCategories   = 20
	PercentLiveChannels     = 40
	PercentMovieCategories  = 50
	PercentMovies           = 70
	PercentSeriesCategories = 80
	PercentComplete         = 100
	PercentFailed           = 0
)

// Database
const (
	ProfilesTable   = "profiles"
	CategoriesTable = "categories"
	ChannelsTable   = "channels"
	MoviesTable     = "movies"
	SeriesTable     = "series"
)
