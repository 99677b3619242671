package dto

import (
	"time"

	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/syncer"
)

type SyncStartedResponse struct {
	RunID string `json:"run_id"`
}

type SyncResultResponse struct {
	Saved    map[string]int `json:"saved"`
	Skipped  map[string]int `json:"skipped"`
	RunID    string         `json:"run_id"`
	Duration string         `json:"duration"`
	Fetched  int            `json:"fetched"`
}

func NewSyncResultResponse(r *syncer.Result) SyncResultResponse {
	return SyncResultResponse{
		RunID:    r.RunID,
		Saved:    r.Saved,
		Skipped:  r.Skipped,
		Duration: r.Duration.Round(time.Millisecond).String(),
		Fetched:  r.Fetched,
	}
}

type SyncStatusResponse struct {
	RunID      string `json:"run_id,omitempty"`
	State      string `json:"state,omitempty"`
	Error      string `json:"error,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	Running    bool   `json:"running"`
}

func NewSyncStatusResponse(s domain.SyncStatus) SyncStatusResponse {
	resp := SyncStatusResponse{
		RunID:   s.RunID,
		State:   string(s.State),
		Error:   s.Error,
		Running: s.Running,
	}
	if !s.FinishedAt.IsZero() {
		resp.FinishedAt = s.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

type PlayResponse struct {
	URL string `json:"url"`
}
