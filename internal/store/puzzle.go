package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/parsons/internal/proof"
)

var puzzleColumns = []string{
	"id", "title", "display_title", "statement", "category", "difficulty",
	"tags", "steps", "solution_order", "is_active", "created_at", "updated_at",
}

// puzzleRepo implements PuzzleRepo with ent's SQL builders.
type puzzleRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *puzzleRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// listPredicate builds the WHERE clause shared by List and its count.
func listPredicate(opts ListOpts) *entsql.Predicate {
	ps := []*entsql.Predicate{entsql.EQ("is_active", true)}
	if opts.Category != "" {
		ps = append(ps, entsql.EQ("category", opts.Category))
	}
	if opts.Difficulty != "" {
		ps = append(ps, entsql.EQ("difficulty", opts.Difficulty))
	}
	if len(opts.Tags) > 0 {
		tagPs := make([]*entsql.Predicate, len(opts.Tags))
		for i, tag := range opts.Tags {
			// Match the quoted element the way encodePuzzle stored it,
			// HTML escapes included.
			needle, _ := json.Marshal(tag)
			tagPs[i] = entsql.Contains("tags", string(needle))
		}
		ps = append(ps, entsql.Or(tagPs...))
	}
	if opts.Search != "" {
		ps = append(ps, entsql.Or(
			entsql.ContainsFold("title", opts.Search),
			entsql.ContainsFold("display_title", opts.Search),
			entsql.ContainsFold("statement", opts.Search),
		))
	}
	return entsql.And(ps...)
}

func (r *puzzleRepo) List(ctx context.Context, opts ListOpts) ([]PuzzleRecord, int, error) {
	b := builder()

	countQuery, countArgs := b.Select(entsql.Count("*")).
		From(b.Table(puzzlesTable)).
		Where(listPredicate(opts)).
		Query()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count puzzles: %w", err)
	}

	sel := b.Select(puzzleColumns...).
		From(b.Table(puzzlesTable)).
		Where(listPredicate(opts))
	sel.OrderBy(entsql.Desc(sel.C("created_at")), sel.C("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		sel.Offset(opts.Offset)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query puzzles: %w", err)
	}
	defer rows.Close()

	var out []PuzzleRecord
	for rows.Next() {
		rec, err := scanPuzzle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate puzzles: %w", err)
	}
	return out, total, nil
}

func (r *puzzleRepo) Get(ctx context.Context, id string) (*PuzzleRecord, error) {
	b := builder()
	query, args := b.Select(puzzleColumns...).
		From(b.Table(puzzlesTable)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_active", true))).
		Query()

	rec, err := scanPuzzle(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("puzzle %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

func (r *puzzleRepo) Create(ctx context.Context, p proof.Puzzle) (*PuzzleRecord, error) {
	enc, err := encodePuzzle(p)
	if err != nil {
		return nil, err
	}
	now := r.clock()

	query, args := builder().Insert(puzzlesTable).
		Columns(puzzleColumns...).
		Values(p.ID, p.Title, p.DisplayTitle, p.Statement, string(p.Category), string(p.Difficulty),
			enc.tags, enc.steps, enc.order, true, now.UnixMilli(), now.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("puzzle %q: %w", p.ID, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert puzzle: %w", err)
	}

	return &PuzzleRecord{
		Puzzle:    p,
		Active:    true,
		CreatedAt: time.UnixMilli(now.UnixMilli()),
		UpdatedAt: time.UnixMilli(now.UnixMilli()),
	}, nil
}

func (r *puzzleRepo) Update(ctx context.Context, p proof.Puzzle) (*PuzzleRecord, error) {
	enc, err := encodePuzzle(p)
	if err != nil {
		return nil, err
	}

	query, args := builder().Update(puzzlesTable).
		Set("title", p.Title).
		Set("display_title", p.DisplayTitle).
		Set("statement", p.Statement).
		Set("category", string(p.Category)).
		Set("difficulty", string(p.Difficulty)).
		Set("tags", enc.tags).
		Set("steps", enc.steps).
		Set("solution_order", enc.order).
		Set("updated_at", r.clock().UnixMilli()).
		Where(entsql.And(entsql.EQ("id", p.ID), entsql.EQ("is_active", true))).
		Query()
	if err := r.execOne(ctx, query, args, p.ID); err != nil {
		return nil, fmt.Errorf("update puzzle: %w", err)
	}
	return r.Get(ctx, p.ID)
}

func (r *puzzleRepo) Delete(ctx context.Context, id string) error {
	query, args := builder().Update(puzzlesTable).
		Set("is_active", false).
		Set("updated_at", r.clock().UnixMilli()).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_active", true))).
		Query()
	if err := r.execOne(ctx, query, args, id); err != nil {
		return fmt.Errorf("delete puzzle: %w", err)
	}
	return nil
}

func (r *puzzleRepo) Stats(ctx context.Context) (PuzzleStats, error) {
	stats := PuzzleStats{
		ByCategory:   make(map[string]int),
		ByDifficulty: make(map[string]int),
	}

	for column, counts := range map[string]map[string]int{
		"category":   stats.ByCategory,
		"difficulty": stats.ByDifficulty,
	} {
		b := builder()
		query, args := b.Select(column, entsql.Count("*")).
			From(b.Table(puzzlesTable)).
			Where(entsql.EQ("is_active", true)).
			GroupBy(column).
			Query()

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return PuzzleStats{}, fmt.Errorf("count by %s: %w", column, err)
		}
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return PuzzleStats{}, fmt.Errorf("scan %s count: %w", column, err)
			}
			counts[key] = n
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return PuzzleStats{}, fmt.Errorf("iterate %s counts: %w", column, err)
		}
	}

	for _, n := range stats.ByCategory {
		stats.Total += n
	}
	return stats, nil
}

// execOne runs a statement that must touch exactly one active puzzle.
func (r *puzzleRepo) execOne(ctx context.Context, query string, args []any, id string) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("puzzle %q: %w", id, ErrNotFound)
	}
	return nil
}

type encodedPuzzle struct {
	tags, steps, order string
}

func encodePuzzle(p proof.Puzzle) (encodedPuzzle, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	t, err := json.Marshal(tags)
	if err != nil {
		return encodedPuzzle{}, fmt.Errorf("encode tags of %q: %w", p.ID, err)
	}
	s, err := json.Marshal(p.Steps)
	if err != nil {
		return encodedPuzzle{}, fmt.Errorf("encode steps of %q: %w", p.ID, err)
	}
	o, err := json.Marshal(p.SolutionOrder)
	if err != nil {
		return encodedPuzzle{}, fmt.Errorf("encode solution order of %q: %w", p.ID, err)
	}
	return encodedPuzzle{tags: string(t), steps: string(s), order: string(o)}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPuzzle(row rowScanner) (*PuzzleRecord, error) {
	var (
		rec                PuzzleRecord
		tags, steps, order string
		created, updated   int64
	)
	err := row.Scan(&rec.ID, &rec.Title, &rec.DisplayTitle, &rec.Statement,
		&rec.Category, &rec.Difficulty, &tags, &steps, &order,
		&rec.Active, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan puzzle: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %q: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(steps), &rec.Steps); err != nil {
		return nil, fmt.Errorf("decode steps of %q: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(order), &rec.SolutionOrder); err != nil {
		return nil, fmt.Errorf("decode solution order of %q: %w", rec.ID, err)
	}
	rec.CreatedAt = time.UnixMilli(created)
	rec.UpdatedAt = time.UnixMilli(updated)
	return &rec, nil
}
