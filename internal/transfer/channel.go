package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/sheetview/internal/grid"
)

// ErrNoSession is returned when a channel operation has no session id.
var ErrNoSession = errors.New("transfer: empty session id")

// KeyPrefix is prepended to session ids to form store keys.
const KeyPrefix = "grid:"

// Key returns the store key for a session.
func Key(session string) string {
	return KeyPrefix + session
}

// Channel carries one grid per session through a BlobStore.
type Channel struct {
	store BlobStore
}

// NewChannel creates a channel over store.
func NewChannel(store BlobStore) *Channel {
	return &Channel{store: store}
}

// Put replaces the session's grid with g.
func (c *Channel) Put(ctx context.Context, session string, g grid.Grid) error {
	if session == "" {
		return ErrNoSession
	}
	data, err := g.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}
	return c.store.Set(ctx, Key(session), data)
}

// Load returns the session's grid. ok is false when nothing is stored,
// which callers treat as an empty grid.
func (c *Channel) Load(ctx context.Context, session string) (g grid.Grid, ok bool, err error) {
	if session == "" {
		return nil, false, ErrNoSession
	}
	data, err := c.store.Get(ctx, Key(session))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, false, fmt.Errorf("decode stored grid: %w", err)
	}
	return g, true, nil
}

// Clear removes the session's grid.
func (c *Channel) Clear(ctx context.Context, session string) error {
	if session == "" {
		return ErrNoSession
	}
	return c.store.Delete(ctx, Key(session))
}

// Purge removes expired grids from the underlying store.
func (c *Channel) Purge(ctx context.Context) (int, error) {
	return c.store.Purge(ctx)
}
