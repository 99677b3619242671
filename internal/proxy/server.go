package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/streamhub/internal/logger"
)

// Server runs the forwarder on an ephemeral loopback port. It implements
// PortProvider once started.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   *logger.Logger
	ready    chan struct{}
	mu       sync.Mutex
	startErr error
	host     string
}

func NewServer(host string, forwarder *Forwarder, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	forwarder.RegisterRoutes(r)

	return &Server{
		srv:    &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second},
		logger: log.WithComponent("proxy-server"),
		ready:  make(chan struct{}),
		host:   host,
	}
}

// Start binds host:0 and serves in the background. Call it once.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, "0"))

	s.mu.Lock()
	s.listener = ln
	s.startErr = err
	s.mu.Unlock()
	close(s.ready)

	if err != nil {
		return fmt.Errorf("proxy listen: %w", err)
	}

	s.logger.Info("Stream proxy listening", "addr", ln.Addr().String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Stream proxy stopped", "error", err)
		}
	}()
	return nil
}

// Port waits for Start and returns the bound port.
func (s *Server) Port(ctx context.Context) (int, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return 0, s.startErr
	}
	return s.listener.Addr().(*net.TCPAddr).Port, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
