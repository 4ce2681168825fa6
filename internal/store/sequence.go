package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out one increasing number shared by every event
// table, so attempts and LLM calls can be ordered against each other.
//
// The mutex serializes callers inside the process and the RETURNING clause
// keeps the increment atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventPredicates translates QueryOpts into WHERE clauses over the shared
// sequence and timestamp columns.
func eventPredicates(opts QueryOpts) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if opts.After > 0 {
		ps = append(ps, entsql.GT(sequenceColumn, opts.After))
	}
	if opts.Before > 0 {
		ps = append(ps, entsql.LT(sequenceColumn, opts.Before))
	}
	if !opts.From.IsZero() {
		ps = append(ps, entsql.GTE(timestampColumn, opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		ps = append(ps, entsql.LTE(timestampColumn, opts.To.UnixMilli()))
	}
	return ps
}
