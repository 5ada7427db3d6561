// Package cache keeps snapshots of successfully loaded record sets in sqlite.
//
// The source client never reads from here. Snapshots back the offline mode
// and the last-updated metadata.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bighogz/fintable/internal/models"
)

const maxAgeHours = 24

// keep is how many snapshots survive a Write.
const keep = 5

var ErrNoSnapshot = errors.New("no snapshot")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	cached_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_records (
	snapshot_id      TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	date             TEXT NOT NULL,
	revenue          REAL NOT NULL,
	net_income       REAL NOT NULL,
	gross_profit     REAL NOT NULL,
	eps              REAL NOT NULL,
	operating_income REAL NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);
`

type Snapshot struct {
	ID       string
	Source   string
	CachedAt time.Time
	Records  []models.Record
}

type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Cache{db: db, now: time.Now}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Write stores records as the newest snapshot and prunes old ones.
func (c *Cache) Write(ctx context.Context, source string, records []models.Record) (string, error) {
	id := uuid.NewString()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, cached_at) VALUES (?, ?, ?)`,
		id, source, c.now().UTC().UnixNano()); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_records
		(snapshot_id, position, date, revenue, net_income, gross_profit, eps, operating_income)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, id, i, r.Date, r.Revenue, r.NetIncome, r.GrossProfit, r.EPS, r.OperatingIncome); err != nil {
			return "", fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id NOT IN
		(SELECT id FROM snapshots ORDER BY cached_at DESC LIMIT ?)`, keep); err != nil {
		return "", fmt.Errorf("prune snapshots: %w", err)
	}
	return id, tx.Commit()
}

// Read returns the newest snapshot. Unless allowStale is set, snapshots older
// than a day are ignored.
func (c *Cache) Read(ctx context.Context, allowStale bool) (*Snapshot, bool) {
	s, err := c.latest(ctx)
	if err != nil {
		return nil, false
	}
	if !allowStale && c.now().Sub(s.CachedAt) > maxAgeHours*time.Hour {
		return nil, false
	}
	return s, true
}

// CachedAt returns when the newest snapshot was written, or nil.
func (c *Cache) CachedAt(ctx context.Context) *time.Time {
	var ns int64
	err := c.db.QueryRowContext(ctx, `SELECT cached_at FROM snapshots ORDER BY cached_at DESC LIMIT 1`).Scan(&ns)
	if err != nil {
		return nil
	}
	t := time.Unix(0, ns).UTC()
	return &t
}

// Load returns the records of the newest snapshot, however old.
func (c *Cache) Load(ctx context.Context) ([]models.Record, error) {
	s, err := c.latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.Records, nil
}

func (c *Cache) latest(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	var ns int64
	err := c.db.QueryRowContext(ctx,
		`SELECT id, source, cached_at FROM snapshots ORDER BY cached_at DESC LIMIT 1`).Scan(&s.ID, &s.Source, &ns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	s.CachedAt = time.Unix(0, ns).UTC()

	rows, err := c.db.QueryContext(ctx, `SELECT date, revenue, net_income, gross_profit, eps, operating_income
		FROM snapshot_records WHERE snapshot_id = ? ORDER BY position`, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	s.Records = make([]models.Record, 0)
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.Date, &r.Revenue, &r.NetIncome, &r.GrossProfit, &r.EPS, &r.OperatingIncome); err != nil {
			return nil, err
		}
		s.Records = append(s.Records, r)
	}
	return &s, rows.Err()
}
