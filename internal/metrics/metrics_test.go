package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSyncRun(t *testing.T) {
	before := testutil.ToFloat64(SyncRuns.WithLabelValues("failed"))
	RecordSyncRun("failed", time.Second)
	after := testutil.ToFloat64(SyncRuns.WithLabelValues("failed"))
	if after != before+1 {
		t.Errorf("Expected failed counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordNormalized(t *testing.T) {
	savedBefore := testutil.ToFloat64(RowsSaved.WithLabelValues("movies"))
	skippedBefore := testutil.ToFloat64(RecordsSkipped.WithLabelValues("movies"))

	RecordNormalized("movies", 10, 2)
	RecordNormalized("movies", 5, 0)

	if got := testutil.ToFloat64(RowsSaved.WithLabelValues("movies")) - savedBefore; got != 15 {
		t.Errorf("Expected 15 rows saved, got %v", got)
	}
	if got := testutil.ToFloat64(RecordsSkipped.WithLabelValues("movies")) - skippedBefore; got != 2 {
		t.Errorf("Expected 2 records skipped, got %v", got)
	}
}

func TestRecordRemoteRequest(t *testing.T) {
	tests := []struct {
		status int
		label  string
	}{
		{200, "200"},
		{401, "401"},
		{0, "error"},
	}

	for _, tt := range tests {
		before := testutil.ToFloat64(RemoteRequests.WithLabelValues("get_profile", tt.label))
		RecordRemoteRequest("get_profile", tt.status)
		after := testutil.ToFloat64(RemoteRequests.WithLabelValues("get_profile", tt.label))
		if after != before+1 {
			t.Errorf("status %d: expected label %q to increase", tt.status, tt.label)
		}
	}
}

func TestTrackSyncInProgress(t *testing.T) {
	TrackSyncInProgress(true)
	if v := testutil.ToFloat64(SyncInProgress); v != 1 {
		t.Errorf("Expected 1, got %v", v)
	}
	TrackSyncInProgress(false)
	if v := testutil.ToFloat64(SyncInProgress); v != 0 {
		t.Errorf("Expected 0, got %v", v)
	}
}
