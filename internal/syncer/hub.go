package syncer

import (
	"sync"

	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/metrics"
)

// Hub fans progress events out to any number of subscribers. Publishing
// never blocks: a subscriber whose buffer is full loses its oldest pending
// event, so the newest (and the terminal) event always lands.
type Hub struct {
	subs   map[chan domain.SyncProgress]struct{}
	last   *domain.SyncProgress
	mu     sync.Mutex
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[chan domain.SyncProgress]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber. The cancel func unregisters it and closes
// the channel; calling it more than once is safe.
func (h *Hub) Subscribe() (<-chan domain.SyncProgress, func()) {
	ch := make(chan domain.SyncProgress, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	metrics.ProgressSubscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
			metrics.ProgressSubscribers.Dec()
		})
	}
	return ch, cancel
}

// Publish delivers p to every subscriber. It matches ProgressFunc.
func (h *Hub) Publish(p domain.SyncProgress) {
	h.mu.Lock()
	defer h.mu.Unlock()

	last := p
	h.last = &last
	for ch := range h.subs {
		for {
			select {
			case ch <- p:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Last returns the most recent event published, if any.
func (h *Hub) Last() (domain.SyncProgress, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return domain.SyncProgress{}, false
	}
	return *h.last, true
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
