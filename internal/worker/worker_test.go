package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/syncer"
)

type fakeSession struct {
	mu      sync.Mutex
	running bool
	syncs   int
	logins  []domain.Profile
	err     error
}

func (f *fakeSession) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeSession) Sync(ctx context.Context) (*syncer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	if f.err != nil {
		return nil, f.err
	}
	return &syncer.Result{RunID: "run"}, nil
}

func (f *fakeSession) Login(ctx context.Context, p domain.Profile) (*syncer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, p)
	return &syncer.Result{RunID: "login"}, nil
}

func (f *fakeSession) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs, len(f.logins)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorker_SyncsOnInterval(t *testing.T) {
	s := &fakeSession{}
	w := NewWorker(s, 10*time.Millisecond, logger.Discard())
	w.Start()
	waitFor(t, func() bool { n, _ := s.counts(); return n >= 2 })
	w.Stop()

	syncs, logins := s.counts()
	if logins != 0 {
		t.Errorf("Expected no logins, got %d", logins)
	}
	if syncs < 2 {
		t.Errorf("Expected at least 2 syncs, got %d", syncs)
	}
}

func TestWorker_SkipsWhileRunning(t *testing.T) {
	s := &fakeSession{running: true}
	w := NewWorker(s, 5*time.Millisecond, logger.Discard())
	w.Start()
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	if syncs, _ := s.counts(); syncs != 0 {
		t.Errorf("Expected no syncs while running, got %d", syncs)
	}
}

func TestWorker_Bootstrap(t *testing.T) {
	s := &fakeSession{}
	w := NewWorker(s, 0, logger.Discard())
	w.Bootstrap = &domain.Profile{URL: "http://provider.test", Username: "u", Password: "p"}
	w.Start()
	waitFor(t, func() bool { _, n := s.counts(); return n == 1 })
	w.Stop()

	if syncs, _ := s.counts(); syncs != 0 {
		t.Errorf("Expected no interval syncs when disabled, got %d", syncs)
	}
}

func TestWorker_DisabledIsNoop(t *testing.T) {
	s := &fakeSession{}
	w := NewWorker(s, 0, logger.Discard())
	w.Start()
	w.Stop()

	if syncs, logins := s.counts(); syncs != 0 || logins != 0 {
		t.Errorf("Expected no activity, got syncs=%d logins=%d", syncs, logins)
	}
}

func TestWorker_NoProfileKeepsTicking(t *testing.T) {
	s := &fakeSession{err: domain.ErrNoProfile}
	w := NewWorker(s, 5*time.Millisecond, logger.Discard())
	w.Start()
	waitFor(t, func() bool { n, _ := s.counts(); return n >= 3 })
	w.Stop()
}
