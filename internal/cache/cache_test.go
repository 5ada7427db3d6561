package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/fintable/internal/models"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestEmptyCache(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()

	_, ok := c.Read(ctx, true)
	assert.False(t, ok)
	assert.Nil(t, c.CachedAt(ctx))
	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestWriteRead(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	recs := []models.Record{
		{Date: "2024", Revenue: 391035000000, NetIncome: 93736000000, GrossProfit: 180683000000, EPS: 6.11, OperatingIncome: 123216000000},
		{Date: "2023", Revenue: 383285000000, NetIncome: 96995000000, GrossProfit: 169148000000, EPS: 6.16, OperatingIncome: 114301000000},
	}
	id, err := c.Write(ctx, "http://backend/fetch_data", recs)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s, ok := c.Read(ctx, false)
	require.True(t, ok)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "http://backend/fetch_data", s.Source)
	assert.Equal(t, now, s.CachedAt)
	assert.Equal(t, recs, s.Records)

	at := c.CachedAt(ctx)
	require.NotNil(t, at)
	assert.Equal(t, now, *at)

	loaded, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, recs, loaded)
}

func TestReadStale(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	_, err := c.Write(ctx, "src", []models.Record{})
	require.NoError(t, err)

	c.now = func() time.Time { return now.Add(25 * time.Hour) }
	_, ok := c.Read(ctx, false)
	assert.False(t, ok)

	s, ok := c.Read(ctx, true)
	require.True(t, ok)
	assert.Empty(t, s.Records)
	assert.NotNil(t, s.Records)
}

func TestWriteKeepsNewest(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var last string
	for i := 0; i < keep+3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		c.now = func() time.Time { return at }
		id, err := c.Write(ctx, "src", []models.Record{{Date: "2020", Revenue: float64(i)}})
		require.NoError(t, err)
		last = id
	}

	var n int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n))
	assert.Equal(t, keep, n)
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM snapshot_records`).Scan(&n))
	assert.Equal(t, keep, n, "records of pruned snapshots are removed")

	s, ok := c.Read(ctx, true)
	require.True(t, ok)
	assert.Equal(t, last, s.ID)
	assert.Equal(t, float64(keep+2), s.Records[0].Revenue)
}
