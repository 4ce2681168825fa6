// Package catalog loads the built-in proof puzzles and any extra content
// files, and seeds them into the store.
package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
)

//go:embed content/*.json
var builtinFS embed.FS

// CategoryInfo summarizes one category of the catalog.
type CategoryInfo struct {
	Name        proof.Category `json:"name"`
	Description string         `json:"description"`
	Count       int            `json:"count"`
}

// Filter narrows Catalog.Filter. Zero values match everything; Tags match
// when a puzzle carries any of them and Search is a case-insensitive
// substring of the title, display title or statement.
type Filter struct {
	Category   proof.Category
	Difficulty proof.Difficulty
	Tags       []string
	Search     string
}

// Catalog is an immutable, ordered set of checked puzzles.
type Catalog struct {
	puzzles      []proof.Puzzle
	byID         map[string]int
	descriptions map[proof.Category]string
}

// Builtin returns the catalog of embedded puzzles.
func Builtin() (*Catalog, error) {
	return load(builtinFS, "content")
}

// Load returns the built-in puzzles plus every content file directly under
// dir. An empty dir loads only the built-ins.
func Load(dir string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in puzzles: %w", err)
	}
	if dir == "" {
		return c, nil
	}
	extra, err := load(os.DirFS(dir), ".")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	if err := c.merge(extra); err != nil {
		return nil, err
	}
	return c, nil
}

func newCatalog() *Catalog {
	return &Catalog{
		byID:         make(map[string]int),
		descriptions: make(map[proof.Category]string),
	}
}

// load parses every content file in dir of fsys, in name order. Errors
// from all files are reported together.
func load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	c := newCatalog()
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !IsContentFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, e.Name())))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f, err := Parse(e.Name(), data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.addFile(e.Name(), f); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func (c *Catalog) addFile(name string, f *File) error {
	var errs []error
	for _, p := range f.Puzzles {
		if _, dup := c.byID[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: puzzle id %q already defined", name, p.ID))
			continue
		}
		c.byID[p.ID] = len(c.puzzles)
		c.puzzles = append(c.puzzles, p)
	}
	if c.descriptions[f.Category] == "" {
		c.descriptions[f.Category] = f.Description
	}
	return errors.Join(errs...)
}

func (c *Catalog) merge(other *Catalog) error {
	var errs []error
	for _, p := range other.puzzles {
		if _, dup := c.byID[p.ID]; dup {
			errs = append(errs, fmt.Errorf("puzzle id %q already defined", p.ID))
			continue
		}
		c.byID[p.ID] = len(c.puzzles)
		c.puzzles = append(c.puzzles, p)
	}
	for cat, d := range other.descriptions {
		if c.descriptions[cat] == "" {
			c.descriptions[cat] = d
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of puzzles.
func (c *Catalog) Len() int { return len(c.puzzles) }

// All returns every puzzle in load order.
func (c *Catalog) All() []proof.Puzzle {
	return slices.Clone(c.puzzles)
}

// Get looks up a puzzle by id.
func (c *Catalog) Get(id string) (proof.Puzzle, bool) {
	i, ok := c.byID[id]
	if !ok {
		return proof.Puzzle{}, false
	}
	return c.puzzles[i], true
}

// ByCategory returns the puzzles of one category.
func (c *Catalog) ByCategory(cat proof.Category) []proof.Puzzle {
	return c.Filter(Filter{Category: cat})
}

// Categories returns every known category with its puzzle count, in
// display order. Categories without puzzles are included with count 0.
func (c *Catalog) Categories() []CategoryInfo {
	counts := make(map[proof.Category]int)
	for _, p := range c.puzzles {
		counts[p.Category]++
	}
	out := make([]CategoryInfo, 0, len(proof.AllCategories()))
	for _, cat := range proof.AllCategories() {
		out = append(out, CategoryInfo{Name: cat, Description: c.descriptions[cat], Count: counts[cat]})
	}
	return out
}

// Filter returns the puzzles matching f, in load order.
func (c *Catalog) Filter(f Filter) []proof.Puzzle {
	search := strings.ToLower(f.Search)
	var out []proof.Puzzle
	for _, p := range c.puzzles {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && p.Difficulty != f.Difficulty {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasAnyTag(p proof.Puzzle, tags []string) bool {
	for _, t := range tags {
		if slices.Contains(p.Tags, t) {
			return true
		}
	}
	return false
}

func matchesSearch(p proof.Puzzle, lowered string) bool {
	for _, s := range []string{p.Title, p.DisplayTitle, p.Statement} {
		if strings.Contains(strings.ToLower(s), lowered) {
			return true
		}
	}
	return false
}

// PuzzleCreator is the part of store.PuzzleRepo that seeding needs.
type PuzzleCreator interface {
	Create(ctx context.Context, p proof.Puzzle) (*store.PuzzleRecord, error)
}

// Seed inserts every catalog puzzle whose id is not yet in the store and
// returns how many were created. Existing ids, including deleted puzzles,
// are left alone.
func (c *Catalog) Seed(ctx context.Context, repo PuzzleCreator) (int, error) {
	created := 0
	for _, p := range c.puzzles {
		_, err := repo.Create(ctx, p)
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrDuplicate):
		default:
			return created, fmt.Errorf("seed puzzle %q: %w", p.ID, err)
		}
	}
	return created, nil
}
