package domain

import "time"

// SyncState is a state of the sync state machine.
type SyncState string

const (
	SyncStateAuthenticating           SyncState = "authenticating"
	SyncStateFetchingLiveCategories   SyncState = "fetching_live_categories"
	SyncStateFetchingLiveChannels     SyncState = "fetching_live_channels"
	SyncStateFetchingMovieCategories  SyncState = "fetching_movie_categories"
	SyncStateFetchingMovies           SyncState = "fetching_movies"
	SyncStateFetchingSeriesCategories SyncState = "fetching_series_categories"
	SyncStateFetchingSeries           SyncState = "fetching_series"
	SyncStateComplete                 SyncState = "complete"
	SyncStateFailed                   SyncState = "failed"
)

// Terminal reports whether no further transition can leave s.
func (s SyncState) Terminal() bool {
	return s == SyncStateComplete || s == SyncStateFailed
}

// SyncProgress is one progress event emitted by the orchestrator.
type SyncProgress struct {
	RunID   string    `json:"run_id,omitempty"`
	State   SyncState `json:"state"`
	Message string    `json:"message"`
	Percent int       `json:"percent"`
}

// SyncStatus summarizes the last sync run, as persisted in settings.
type SyncStatus struct {
	FinishedAt time.Time `json:"finished_at,omitempty"`
	RunID      string    `json:"run_id"`
	State      SyncState `json:"state"`
	Error      string    `json:"error,omitempty"`
	Running    bool      `json:"running"`
}
