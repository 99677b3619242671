// Package proxy rewrites playback URLs onto the local stream forwarder and
// serves that forwarder.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/metrics"
)

// PortProvider reports the port the local forwarder listens on.
type PortProvider interface {
	Port(ctx context.Context) (int, error)
}

// PortFunc adapts a function to PortProvider.
type PortFunc func(ctx context.Context) (int, error)

func (f PortFunc) Port(ctx context.Context) (int, error) {
	return f(ctx)
}

// Resolver builds proxied playback URLs. The port is looked up lazily and
// cached after the first successful lookup; failed lookups are retried on
// the next call.
type Resolver struct {
	provider PortProvider
	logger   *logger.Logger
	mu       sync.Mutex
	port     int
}

func NewResolver(provider PortProvider, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{
		provider: provider,
		logger:   log.WithComponent("proxy"),
	}
}

// URL returns the local proxy URL for target. An empty target yields "",
// an already proxied target is returned unchanged, and target itself is
// returned when the port cannot be resolved.
func (r *Resolver) URL(ctx context.Context, target string) string {
	if target == "" {
		return ""
	}
	if IsProxied(target) {
		return target
	}

	port, err := r.resolvePort(ctx)
	if err != nil {
		metrics.ProxyFallbacks.Inc()
		r.logger.Warn("Proxy port unavailable, using direct URL", "error", err)
		return target
	}
	return Compose(port, target)
}

func (r *Resolver) resolvePort(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.port != 0 {
		return r.port, nil
	}
	if r.provider == nil {
		return 0, &domain.ProxyResolutionError{Err: errors.New("no port provider")}
	}

	port, err := r.provider.Port(ctx)
	if err != nil {
		return 0, &domain.ProxyResolutionError{Err: err}
	}
	if port <= 0 {
		return 0, &domain.ProxyResolutionError{Err: fmt.Errorf("invalid port %d", port)}
	}

	r.port = port
	r.logger.Info("Proxy port loaded", "port", port)
	return port, nil
}

// IsProxied reports whether target already points at a local forwarder.
func IsProxied(target string) bool {
	return strings.Contains(target, "localhost") && strings.Contains(target, constants.ProxyQueryPrefix)
}

// Compose builds the forwarder URL for target on port. Spaces are encoded as
// %20 rather than +, matching encodeURIComponent.
func Compose(port int, target string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(target), "+", "%20")
	return fmt.Sprintf("http://localhost:%d%s%s", port, constants.ProxyQueryPrefix, escaped)
}
