package store

import (
	"context"
	"fmt"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
)

var (
	categoryColumns = []string{"id", "name", "type", "parent_id"}
	channelColumns  = []string{"id", "name", "category_id", "stream_id", "logo", "epg_id"}
	movieColumns    = []string{"id", "name", "category_id", "stream_id", "logo", "rating", "added_date"}
	seriesColumns   = []string{"id", "name", "category_id", "series_id", "logo", "rating", "plot"}
)

// SaveCategories upserts categories, forcing their type to kind.
func (db *DB) SaveCategories(ctx context.Context, categories []domain.Category, kind domain.Kind) error {
	return batchUpsert(ctx, db, constants.CategoriesTable, categoryColumns, categories, func(c domain.Category) []interface{} {
		parent := c.ParentID
		if parent == "" {
			parent = constants.RootCategoryID
		}
		return []interface{}{c.ID, c.Name, string(kind), parent}
	})
}

func (db *DB) SaveChannels(ctx context.Context, channels []domain.Channel) error {
	return batchUpsert(ctx, db, constants.ChannelsTable, channelColumns, channels, func(c domain.Channel) []interface{} {
		return []interface{}{c.ID, c.Name, c.CategoryID, c.StreamID, c.Logo, c.EPGID}
	})
}

func (db *DB) SaveMovies(ctx context.Context, movies []domain.Movie) error {
	return batchUpsert(ctx, db, constants.MoviesTable, movieColumns, movies, func(m domain.Movie) []interface{} {
		return []interface{}{m.ID, m.Name, m.CategoryID, m.StreamID, m.Logo, m.Rating, m.AddedDate}
	})
}

func (db *DB) SaveSeries(ctx context.Context, series []domain.Series) error {
	return batchUpsert(ctx, db, constants.SeriesTable, seriesColumns, series, func(s domain.Series) []interface{} {
		return []interface{}{s.ID, s.Name, s.CategoryID, s.SeriesID, s.Logo, s.Rating, s.Plot}
	})
}

// ListCategories returns the categories of kind ordered by name.
func (db *DB) ListCategories(ctx context.Context, kind domain.Kind) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := db.SelectContext(ctx, &categories,
		`SELECT id, name, type, parent_id FROM categories WHERE type = ? ORDER BY name, id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListChannels returns the channels of a category ordered by name.
func (db *DB) ListChannels(ctx context.Context, categoryID string) ([]domain.Channel, error) {
	channels := []domain.Channel{}
	err := db.SelectContext(ctx, &channels,
		`SELECT id, name, category_id, stream_id, logo, epg_id FROM channels WHERE category_id = ? ORDER BY name, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

// ListMovies returns the movies of a category ordered by name.
func (db *DB) ListMovies(ctx context.Context, categoryID string) ([]domain.Movie, error) {
	movies := []domain.Movie{}
	err := db.SelectContext(ctx, &movies,
		`SELECT id, name, category_id, stream_id, logo, rating, added_date FROM movies WHERE category_id = ? ORDER BY name, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// ListSeries returns the series of a category ordered by name.
func (db *DB) ListSeries(ctx context.Context, categoryID string) ([]domain.Series, error) {
	series := []domain.Series{}
	err := db.SelectContext(ctx, &series,
		`SELECT id, name, category_id, series_id, logo, rating, plot FROM series WHERE category_id = ? ORDER BY name, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return series, nil
}

// Counts holds the number of rows per catalog table.
type Counts struct {
	Categories int `json:"categories" db:"categories"`
	Channels   int `json:"channels" db:"channels"`
	Movies     int `json:"movies" db:"movies"`
	Series     int `json:"series" db:"series"`
}

func (db *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := db.GetContext(ctx, &c, `SELECT
		(SELECT COUNT(*) FROM categories) AS categories,
		(SELECT COUNT(*) FROM channels) AS channels,
		(SELECT COUNT(*) FROM movies) AS movies,
		(SELECT COUNT(*) FROM series) AS series`)
	if err != nil {
		return Counts{}, fmt.Errorf("count catalog: %w", err)
	}
	return c, nil
}

// Purge deletes every catalog row. Profiles and settings are kept.
// Sync never calls it: rows removed remotely persist until purged.
func (db *DB) Purge(ctx context.Context) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{constants.ChannelsTable, constants.MoviesTable, constants.SeriesTable, constants.CategoriesTable} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	db.logger.Info("Catalog purged")
	return nil
}
