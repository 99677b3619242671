// Package syncer drives a full catalog sync: authenticate, then fetch,
// normalize and persist each content kind in a fixed order while
// reporting staged progress.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/metrics"
	"github.com/cesargomez89/streamhub/internal/normalize"
	"github.com/cesargomez89/streamhub/internal/xtream"
)

// Catalog is the remote side of a sync.
type Catalog interface {
	GetProfile(ctx context.Context) (*xtream.Account, error)
	GetCategories(ctx context.Context, kind domain.Kind) ([]xtream.RawCategory, error)
	GetItems(ctx context.Context, kind domain.Kind, categoryID string) (xtream.Items, error)
}

// Store is the local side of a sync.
type Store interface {
	SaveProfile(ctx context.Context, p *domain.Profile) error
	SaveCategories(ctx context.Context, categories []domain.Category, kind domain.Kind) error
	SaveChannels(ctx context.Context, channels []domain.Channel) error
	SaveMovies(ctx context.Context, movies []domain.Movie) error
	SaveSeries(ctx context.Context, series []domain.Series) error
}

// ProgressFunc receives progress events synchronously, in order.
type ProgressFunc func(domain.SyncProgress)

// Result summarizes a complete run.
type Result struct {
	Saved    map[string]int `json:"saved"`
	Skipped  map[string]int `json:"skipped"`
	RunID    string         `json:"run_id"`
	Duration time.Duration  `json:"duration"`
	// Fetched counts raw channel, movie and series records before normalization.
	Fetched int `json:"fetched"`
}

type Orchestrator struct {
	catalog Catalog
	store   Store
	logger  *logger.Logger
}

func New(catalog Catalog, store Store, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Default()
	}
	return &Orchestrator{
		catalog: catalog,
		store:   store,
		logger:  log.WithComponent("syncer"),
	}
}

// stage is one step of the state machine. Its event is emitted before work
// runs, so the percent reports the stage being entered.
type stage struct {
	state   domain.SyncState
	message string
	percent int
	work    func(o *Orchestrator, ctx context.Context, r *run) error
}

type run struct {
	result  *Result
	profile domain.Profile
}

var stages = []stage{
	{domain.SyncStateAuthenticating, "Connecting to Xtream API...", constants.PercentStart, (*Orchestrator).authenticate},
	{domain.SyncStateFetchingLiveCategories, "Authenticated. Fetching Live Categories...", constants.PercentAuthenticated, categoriesOf(domain.KindLive)},
	{domain.SyncStateFetchingLiveChannels, "Fetching Live Channels...", constants.PercentLiveCategories, (*Orchestrator).channels},
	{domain.SyncStateFetchingMovieCategories, "Fetching Movie Categories...", constants.PercentLiveChannels, categoriesOf(domain.KindMovie)},
	{domain.SyncStateFetchingMovies, "Fetching Movies...", constants.PercentMovieCategories, (*Orchestrator).movies},
	{domain.SyncStateFetchingSeriesCategories, "Fetching Series Categories...", constants.PercentMovies, categoriesOf(domain.KindSeries)},
	{domain.SyncStateFetchingSeries, "Fetching Series...", constants.PercentSeriesCategories, (*Orchestrator).series},
}

// Run performs one full sync for profile. On the first failure it emits a
// single failed event and returns the error; rows saved by earlier stages
// remain. Cancelling ctx stops the run at the next stage boundary.
func (o *Orchestrator) Run(ctx context.Context, runID string, profile domain.Profile, onProgress ProgressFunc) (*Result, error) {
	log := o.logger.WithRun(runID, profile.URL)
	emit := func(state domain.SyncState, message string, percent int) {
		if onProgress != nil {
			onProgress(domain.SyncProgress{RunID: runID, State: state, Message: message, Percent: percent})
		}
	}

	started := time.Now()
	r := &run{
		profile: profile,
		result: &Result{
			RunID:   runID,
			Saved:   map[string]int{},
			Skipped: map[string]int{},
		},
	}

	metrics.TrackSyncInProgress(true)
	defer metrics.TrackSyncInProgress(false)

	log.Info("Sync started")
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(log, emit, st.state, fmt.Errorf("sync cancelled: %w", err), "cancelled")
		}

		emit(st.state, st.message, st.percent)
		stageStart := time.Now()
		if err := st.work(o, ctx, r); err != nil {
			return nil, o.fail(log, emit, st.state, err, "failed")
		}
		metrics.RecordStage(string(st.state), time.Since(stageStart))
		log.WithStage(string(st.state)).Debug("Stage complete", "duration", time.Since(stageStart))
	}

	r.result.Duration = time.Since(started)
	emit(domain.SyncStateComplete, "Sync Complete!", constants.PercentComplete)
	metrics.RecordSyncRun("complete", r.result.Duration)
	log.Info("Sync complete", "duration", r.result.Duration, "fetched", r.result.Fetched, "saved", r.result.Saved, "skipped", r.result.Skipped)
	return r.result, nil
}

func (o *Orchestrator) fail(log *logger.Logger, emit func(domain.SyncState, string, int), at domain.SyncState, err error, outcome string) error {
	emit(domain.SyncStateFailed, fmt.Sprintf("Sync failed: %v", err), constants.PercentFailed)
	metrics.RecordSyncRun(outcome, 0)
	log.Error("Sync failed", "stage", at, "error", err)
	return err
}

func (o *Orchestrator) authenticate(ctx context.Context, r *run) error {
	acct, err := o.catalog.GetProfile(ctx)
	if err != nil {
		return err
	}
	profile := r.profile
	profile.ServerInfo = acct.Raw
	return o.store.SaveProfile(ctx, &profile)
}

func categoriesOf(kind domain.Kind) func(*Orchestrator, context.Context, *run) error {
	return func(o *Orchestrator, ctx context.Context, r *run) error {
		raw, err := o.catalog.GetCategories(ctx, kind)
		if err != nil {
			return err
		}
		res := normalize.Categories(raw, kind)
		if err := o.store.SaveCategories(ctx, res.Rows, kind); err != nil {
			return err
		}
		r.record(constants.CategoriesTable+":"+string(kind), constants.CategoriesTable, len(res.Rows), res.Skipped)
		return nil
	}
}

func (o *Orchestrator) channels(ctx context.Context, r *run) error {
	items, err := o.catalog.GetItems(ctx, domain.KindLive, "")
	if err != nil {
		return err
	}
	r.result.Fetched += items.Len()
	res := normalize.Channels(items.Live)
	if err := o.store.SaveChannels(ctx, res.Rows); err != nil {
		return err
	}
	r.record(constants.ChannelsTable, constants.ChannelsTable, len(res.Rows), res.Skipped)
	return nil
}

func (o *Orchestrator) movies(ctx context.Context, r *run) error {
	items, err := o.catalog.GetItems(ctx, domain.KindMovie, "")
	if err != nil {
		return err
	}
	r.result.Fetched += items.Len()
	res := normalize.Movies(items.Movies)
	if err := o.store.SaveMovies(ctx, res.Rows); err != nil {
		return err
	}
	r.record(constants.MoviesTable, constants.MoviesTable, len(res.Rows), res.Skipped)
	return nil
}

func (o *Orchestrator) series(ctx context.Context, r *run) error {
	items, err := o.catalog.GetItems(ctx, domain.KindSeries, "")
	if err != nil {
		return err
	}
	r.result.Fetched += items.Len()
	res := normalize.Series(items.Series)
	if err := o.store.SaveSeries(ctx, res.Rows); err != nil {
		return err
	}
	r.record(constants.SeriesTable, constants.SeriesTable, len(res.Rows), res.Skipped)
	return nil
}

func (r *run) record(key, table string, saved, skipped int) {
	r.result.Saved[key] = saved
	r.result.Skipped[key] = skipped
	metrics.RecordNormalized(table, saved, skipped)
}
