package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/streamhub/internal/cache"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/httpclient"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/proxy"
	"github.com/cesargomez89/streamhub/internal/store"
	"github.com/cesargomez89/streamhub/internal/syncer"
	"github.com/cesargomez89/streamhub/internal/xtream"
)

const syncLockName = "sync"

// CatalogFactory builds a remote catalog client for a profile.
type CatalogFactory func(p domain.Profile) syncer.Catalog

// Locker guards sync runs across processes sharing one database.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

// XtreamCatalog returns a CatalogFactory that builds paced xtream clients.
func XtreamCatalog(httpClient *httpclient.Client, log *logger.Logger) CatalogFactory {
	if log == nil {
		log = logger.Default()
	}
	return func(p domain.Profile) syncer.Catalog {
		return xtream.NewClient(p.URL, p.Username, p.Password,
			xtream.WithHTTPClient(httpClient),
			xtream.WithLogger(log.Logger),
		)
	}
}

// Session owns the store handle and runs at most one sync at a time.
type Session struct {
	Repo     *store.DB
	Settings *store.SettingsRepo
	Logger   *logger.Logger

	baseLogger *logger.Logger
	browser    store.Browser
	cached     *store.CachedBrowser
	resolver   *proxy.Resolver
	hub        *syncer.Hub
	catalog    CatalogFactory
	locker     Locker
	lockTTL    time.Duration

	wg      sync.WaitGroup
	mu      sync.Mutex
	cancel  context.CancelFunc
	current string
	running bool
}

// Option configures a Session.
type Option func(*Session)

// WithBrowseCache serves list queries through c.
func WithBrowseCache(c store.Cache, ttl time.Duration) Option {
	return func(s *Session) {
		s.cached = store.NewCachedBrowser(s.Repo, c, ttl, s.Logger.Logger)
		s.browser = s.cached
	}
}

// WithLocker makes every sync also hold a cross-process lock.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(s *Session) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithHub publishes progress to h instead of a private hub.
func WithHub(h *syncer.Hub) Option {
	return func(s *Session) {
		s.hub = h
	}
}

func NewSession(repo *store.DB, catalog CatalogFactory, resolver *proxy.Resolver, log *logger.Logger, opts ...Option) *Session {
	if log == nil {
		log = logger.Default()
	}
	s := &Session{
		Repo:       repo,
		Settings:   store.NewSettingsRepo(repo),
		Logger:     log.WithComponent("session"),
		baseLogger: log,
		browser:    repo,
		resolver:   resolver,
		catalog:    catalog,
		hub:        syncer.NewHub(16),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the progress hub.
func (s *Session) Hub() *syncer.Hub {
	return s.hub
}

// Login syncs with new credentials. The profile is stored once authentication succeeds.
func (s *Session) Login(ctx context.Context, p domain.Profile) (*syncer.Result, error) {
	if err := validateProfile(&p); err != nil {
		return nil, err
	}
	runID, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, runID, p)
}

// Sync re-syncs with the stored profile.
func (s *Session) Sync(ctx context.Context) (*syncer.Result, error) {
	p, err := s.storedProfile(ctx)
	if err != nil {
		return nil, err
	}
	runID, err := s.acquire()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, runID, *p)
}

// StartSync runs a sync in the background and returns its run id. A nil
// profile uses the stored one. Progress is published on the hub.
func (s *Session) StartSync(p *domain.Profile) (string, error) {
	var profile domain.Profile
	if p == nil {
		stored, err := s.storedProfile(context.Background())
		if err != nil {
			return "", err
		}
		profile = *stored
	} else {
		profile = *p
		if err := validateProfile(&profile); err != nil {
			return "", err
		}
	}

	runID, err := s.acquire()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		// Errors are recorded in the sync status and published on the hub.
		_, _ = s.run(ctx, runID, profile)
	}()
	return runID, nil
}

// Cancel stops a background sync at its next stage boundary.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	s.Logger.Info("Sync cancel requested", "run_id", s.current)
	return true
}

// Running reports whether a sync is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close cancels any background sync and waits for it to finish.
func (s *Session) Close() {
	s.Cancel()
	s.wg.Wait()
}

func (s *Session) acquire() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return "", domain.ErrSyncInProgress
	}
	s.running = true
	s.current = uuid.New().String()
	return s.current, nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.mu.Unlock()
}

func (s *Session) run(ctx context.Context, runID string, p domain.Profile) (*syncer.Result, error) {
	defer s.release()

	if s.locker != nil {
		unlock, err := s.locker.TryLock(ctx, syncLockName, s.lockTTL)
		if errors.Is(err, cache.ErrLocked) {
			return nil, domain.ErrSyncInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		defer unlock()
	}

	s.Logger.Info("Sync run starting", "run_id", runID, "profile_url", p.URL)
	orch := syncer.New(s.catalog(p), s.Repo, s.baseLogger)
	res, err := orch.Run(ctx, runID, p, s.hub.Publish)

	// Stages commit independently, so a failed run may still have written rows.
	if s.cached != nil {
		if cErr := s.cached.Invalidate(context.WithoutCancel(ctx)); cErr != nil {
			s.Logger.Warn("Failed to invalidate browse cache", "error", cErr)
		}
	}

	status := domain.SyncStatus{RunID: runID, FinishedAt: time.Now().UTC(), State: domain.SyncStateComplete}
	if err != nil {
		status.State = domain.SyncStateFailed
		status.Error = err.Error()
	}
	if sErr := s.Settings.SaveSyncStatus(status); sErr != nil {
		s.Logger.Warn("Failed to record sync status", "run_id", runID, "error", sErr)
	}
	return res, err
}

// Status reports the running sync, or the last finished one.
func (s *Session) Status() (domain.SyncStatus, error) {
	s.mu.Lock()
	running, current := s.running, s.current
	s.mu.Unlock()

	if running {
		status := domain.SyncStatus{RunID: current, Running: true, State: domain.SyncStateAuthenticating}
		if last, ok := s.hub.Last(); ok && last.RunID == current {
			status.State = last.State
		}
		return status, nil
	}

	last, err := s.Settings.LastSyncStatus()
	if err != nil {
		return domain.SyncStatus{}, err
	}
	if last == nil {
		return domain.SyncStatus{}, nil
	}
	return *last, nil
}

// Profile returns the stored profile, or ErrNoProfile.
func (s *Session) Profile(ctx context.Context) (*domain.Profile, error) {
	return s.storedProfile(ctx)
}

func (s *Session) storedProfile(ctx context.Context) (*domain.Profile, error) {
	p, err := s.Repo.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNoProfile
	}
	return p, nil
}

func (s *Session) Categories(ctx context.Context, kind domain.Kind) ([]domain.Category, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	return s.browser.ListCategories(ctx, kind)
}

func (s *Session) Channels(ctx context.Context, categoryID string) ([]domain.Channel, error) {
	return s.browser.ListChannels(ctx, categoryID)
}

func (s *Session) Movies(ctx context.Context, categoryID string) ([]domain.Movie, error) {
	return s.browser.ListMovies(ctx, categoryID)
}

func (s *Session) Series(ctx context.Context, categoryID string) ([]domain.Series, error) {
	return s.browser.ListSeries(ctx, categoryID)
}

func (s *Session) Counts(ctx context.Context) (store.Counts, error) {
	return s.Repo.Counts(ctx)
}

// Purge empties the local catalog. Refused while a sync runs.
func (s *Session) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrSyncInProgress
	}

	if err := s.Repo.Purge(ctx); err != nil {
		return err
	}
	// The last run no longer describes what the store holds.
	if err := s.Settings.Delete(store.SettingLastSync); err != nil {
		return fmt.Errorf("clear sync status: %w", err)
	}
	if s.cached != nil {
		return s.cached.Invalidate(ctx)
	}
	return nil
}

// PlayURL returns the proxied playback URL for target.
func (s *Session) PlayURL(ctx context.Context, target string) string {
	if s.resolver == nil {
		return target
	}
	return s.resolver.URL(ctx, target)
}

// ErrInvalidProfile is returned when login credentials are incomplete.
var ErrInvalidProfile = errors.New("url, username and password are required")

func validateProfile(p *domain.Profile) error {
	p.URL = strings.TrimSpace(p.URL)
	p.Username = strings.TrimSpace(p.Username)
	if p.URL == "" || p.Username == "" || p.Password == "" {
		return ErrInvalidProfile
	}
	if !strings.HasPrefix(p.URL, "http://") && !strings.HasPrefix(p.URL, "https://") {
		return fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidProfile)
	}
	return nil
}
