package transfer

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// newTestPostgresStore connects to TEST_DATABASE_URL or skips the test.
func newTestPostgresStore(t *testing.T, ttl time.Duration) *PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewPostgresStore(pool, ttl)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgresStore(t, time.Hour)
	ch := NewChannel(store)

	session := uuid.NewString()
	t.Cleanup(func() { _ = ch.Clear(context.Background(), session) })

	g := grid.Grid{{grid.Text("x"), grid.Number(2.5)}, {grid.Bool(false)}}
	require.NoError(t, ch.Put(ctx, session, g))

	back, ok, err := ch.Load(ctx, session)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, g.Equal(back))

	require.NoError(t, ch.Put(ctx, session, grid.Grid{{grid.Text("y")}}))
	back, _, err = ch.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"y"}}, back.Strings())

	require.NoError(t, ch.Clear(ctx, session))
	_, ok, err = ch.Load(ctx, session)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgresStore(t, time.Minute)

	key := Key(uuid.NewString())
	store.now = func() time.Time { return time.Now().Add(-time.Hour) }
	require.NoError(t, store.Set(ctx, key, []byte(`[["stale"]]`)))
	store.now = time.Now

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
