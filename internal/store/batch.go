package store

import (
	"context"
	"strings"

	"github.com/cesargomez89/streamhub/internal/domain"
)

// batchUpsert writes rows with one multi-row INSERT OR REPLACE per chunk.
// Chunks run in order, one at a time, each committing on its own: when chunk
// k fails, chunks 0..k-1 stay committed and the error names chunk k.
func batchUpsert[T any](ctx context.Context, db *DB, table string, columns []string, rows []T, values func(T) []interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	size := db.chunkSize
	for chunk, start := 0, 0; start < len(rows); chunk, start = chunk+1, start+size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		part := rows[start:end]

		args := make([]interface{}, 0, len(part)*len(columns))
		for _, r := range part {
			args = append(args, values(r)...)
		}

		if _, err := db.ExecContext(ctx, upsertQuery(table, columns, len(part)), args...); err != nil {
			return &domain.StorageError{Table: table, Chunk: chunk, Err: err}
		}
		if db.onChunk != nil {
			db.onChunk(table, len(part))
		}
	}

	db.logger.Debug("Batch upsert complete", "table", table, "rows", len(rows))
	return nil
}

func upsertQuery(table string, columns []string, n int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT OR REPLACE INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(group)
	}
	return b.String()
}
