// Package catalog indexes stored runs in a SQLite database so they can be
// listed and filtered without reading every run directory.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	_ "modernc.org/sqlite"

	"github.com/san-kum/femdvr/internal/storage"
)

const DefaultFile = "catalog.db"

var ErrNotFound = errors.New("catalog: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created     INTEGER NOT NULL,
	dim         INTEGER NOT NULL,
	nnz         INTEGER NOT NULL,
	format      TEXT NOT NULL,
	potential   TEXT NOT NULL,
	nodes       INTEGER NOT NULL,
	bins        INTEGER NOT NULL,
	bin_width   REAL NOT NULL,
	lmax        INTEGER NOT NULL,
	quad_mode   TEXT NOT NULL,
	unconverged INTEGER NOT NULL,
	ground      REAL,
	energies    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_name ON runs(name);
`

// Entry is one indexed run.
type Entry struct {
	ID          string
	Name        string
	Created     time.Time
	Dim         int
	NNZ         int
	Format      string
	Potential   string
	Nodes       int
	Bins        int
	BinWidth    float64
	Lmax        int
	QuadMode    string
	Unconverged int
	Ground      *float64
	Energies    []float64
}

type Catalog struct {
	db *sql.DB
}

func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func FromMetadata(meta storage.RunMetadata) Entry {
	e := Entry{
		ID:          meta.ID,
		Name:        meta.Name,
		Created:     meta.Timestamp,
		Dim:         meta.Dim,
		NNZ:         meta.NNZ,
		Format:      meta.Format,
		Potential:   meta.Potential,
		Nodes:       meta.Nodes,
		Bins:        meta.Bins,
		BinWidth:    meta.BinWidth,
		Lmax:        meta.Lmax,
		QuadMode:    meta.QuadMode,
		Unconverged: meta.Unconverged,
		Energies:    append([]float64(nil), meta.Energies...),
	}
	if len(meta.Energies) > 0 {
		g := meta.Energies[0]
		e.Ground = &g
	}
	return e
}

// Put inserts or replaces an entry.
func (c *Catalog) Put(ctx context.Context, e Entry) error {
	energies, err := json.Marshal(e.Energies)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, name, created, dim, nnz, format, potential, nodes, bins, bin_width, lmax, quad_mode, unconverged, ground, energies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Created.UnixNano(), e.Dim, e.NNZ, e.Format, e.Potential,
		e.Nodes, e.Bins, e.BinWidth, e.Lmax, e.QuadMode, e.Unconverged, e.Ground, string(energies))
	if err != nil {
		return fmt.Errorf("catalog: put %s: %w", e.ID, err)
	}
	return nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, selectCols+" WHERE id = ?", id)
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Name      string
	Potential string
	Limit     int
}

// List returns matching entries, newest first.
func (c *Catalog) List(ctx context.Context, f Filter) ([]Entry, error) {
	var where []string
	var args []any
	if f.Name != "" {
		where = append(where, "name = ?")
		args = append(args, f.Name)
	}
	if f.Potential != "" {
		where = append(where, "potential = ?")
		args = append(args, f.Potential)
	}
	query := selectCols
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Sync indexes every run in the store that the catalog does not know yet
// and drops entries whose directory is gone. It returns the number added.
func (c *Catalog) Sync(ctx context.Context, st *storage.Store) (int, error) {
	runs, err := st.List()
	if err != nil {
		return 0, err
	}
	known, err := c.List(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(known))
	for i, e := range known {
		ids[i] = e.ID
	}
	slices.Sort(ids)

	added := 0
	present := make(map[string]bool, len(runs))
	for _, meta := range runs {
		present[meta.ID] = true
		if _, ok := slices.BinarySearch(ids, meta.ID); ok {
			continue
		}
		if err := c.Put(ctx, FromMetadata(meta)); err != nil {
			return added, err
		}
		added++
	}
	for _, id := range ids {
		if !present[id] {
			if err := c.Delete(ctx, id); err != nil {
				return added, err
			}
		}
	}
	return added, nil
}

const selectCols = `SELECT id, name, created, dim, nnz, format, potential, nodes, bins, bin_width, lmax, quad_mode, unconverged, ground, energies FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*Entry, error) {
	var (
		e        Entry
		created  int64
		ground   sql.NullFloat64
		energies string
	)
	err := s.Scan(&e.ID, &e.Name, &created, &e.Dim, &e.NNZ, &e.Format, &e.Potential,
		&e.Nodes, &e.Bins, &e.BinWidth, &e.Lmax, &e.QuadMode, &e.Unconverged, &ground, &energies)
	if err != nil {
		return nil, err
	}
	e.Created = time.Unix(0, created)
	if ground.Valid {
		g := ground.Float64
		e.Ground = &g
	}
	if err := json.Unmarshal([]byte(energies), &e.Energies); err != nil {
		return nil, fmt.Errorf("catalog: %s energies: %w", e.ID, err)
	}
	return &e, nil
}
