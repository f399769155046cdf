package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/sheetview/internal/codec"
	"github.com/JonMunkholm/sheetview/internal/grid"
	"github.com/JonMunkholm/sheetview/internal/logging"
	"github.com/JonMunkholm/sheetview/internal/transfer"
)

// Limits on edit addresses. They match the largest sheet XLSX can hold.
const (
	MaxEditRows = 1 << 20
	MaxEditCols = 1 << 14
)

// MaxEditCells caps the size an edit may grow a grid to. An edit that
// stays inside the current shape is always allowed.
const MaxEditCells = 1 << 20

// ErrInvalidCell is returned by UpdateCell for an address outside the sheet.
var ErrInvalidCell = errors.New("invalid cell address")

// ServiceConfig holds the settings the Service needs from config.
// Zero values fall back to the defaults below.
type ServiceConfig struct {
	MinRows       int           // Minimum rows shown in the viewer (default: 10)
	MinCols       int           // Minimum columns shown in the viewer (default: 12)
	MaxFileSize   int64         // Upload size limit in bytes (default: 50MB)
	MaxConcurrent int           // Parallel decodes (default: 5)
	MaxWaitTime   time.Duration // Wait for a decode slot (default: 30s)
}

// Defaults for ServiceConfig.
const (
	DefaultMinRows     = 10
	DefaultMinCols     = 12
	DefaultMaxFileSize = 50 << 20
)

// Service provides the core business logic for spreadsheet viewing.
type Service struct {
	channel *transfer.Channel
	limiter *UploadLimiter
	sel     *selections

	minRows     int
	minCols     int
	maxFileSize int64
}

// UploadResult describes a committed upload.
type UploadResult struct {
	Format     codec.Format `json:"format"`
	Rows       int          `json:"rows"`
	Cols       int          `json:"cols"`
	Generation uint64       `json:"generation"`
}

// NewService creates a new Service storing grids in channel.
func NewService(channel *transfer.Channel, cfg ServiceConfig) *Service {
	if cfg.MinRows <= 0 {
		cfg.MinRows = DefaultMinRows
	}
	if cfg.MinCols <= 0 {
		cfg.MinCols = DefaultMinCols
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}

	return &Service{
		channel:     channel,
		limiter:     NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		sel:         newSelections(),
		minRows:     cfg.MinRows,
		minCols:     cfg.MinCols,
		maxFileSize: cfg.MaxFileSize,
	}
}

// MinShape returns the minimum grid shape applied by Grid.
func (s *Service) MinShape() (rows, cols int) {
	return s.minRows, s.minCols
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Upload decodes r and makes it the session's grid.
//
// The file is validated by name and MIME type first; a *codec.ValidationError
// leaves the session untouched. If a newer upload or a Clear arrives for the
// same session while r is being decoded, Upload returns ErrSuperseded and
// discards its grid. A *codec.DecodeError on the newest selection clears the
// session so the viewer shows the empty grid.
//
// Returns ErrTooManyUploads if no decode slot frees up in time.
func (s *Service) Upload(ctx context.Context, session, filename, mimeType string, r io.Reader) (*UploadResult, error) {
	if session == "" {
		return nil, transfer.ErrNoSession
	}

	format, err := codec.Detect(filename, mimeType)
	if err != nil {
		return nil, err
	}

	log := logging.WithFields(ctx, "filename", filename, "format", format)
	log = log.With(clientFields(ctx)...)

	gen := s.sel.begin(session)

	// Acquire decode slot (blocks until available or timeout)
	if err := s.limiter.Acquire(ctx); err != nil {
		s.sel.abandon(session, gen)
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	g, err := codec.DecodeReader(ctx, r, format, s.maxFileSize)
	if err != nil {
		var de *codec.DecodeError
		if !errors.As(err, &de) {
			s.sel.abandon(session, gen)
			return nil, err
		}
		log.Warn("upload could not be decoded", "error", err)
		cerr := s.sel.commit(session, gen, func() error {
			return s.channel.Clear(ctx, session)
		})
		if cerr != nil && !errors.Is(cerr, ErrSuperseded) {
			log.Error("clear after failed decode", "error", cerr)
		}
		return nil, err
	}

	err = s.sel.commit(session, gen, func() error {
		return s.channel.Put(ctx, session, g)
	})
	if errors.Is(err, ErrSuperseded) {
		log.Info("upload superseded", "generation", gen)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("store grid: %w", err)
	}

	result := &UploadResult{
		Format:     format,
		Rows:       g.Rows(),
		Cols:       g.Width(),
		Generation: gen,
	}
	log.Info("upload completed",
		"rows", result.Rows,
		"cols", result.Cols,
		"generation", gen,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Grid returns the session's grid normalized to the minimum shape.
// A session with nothing stored gets the empty grid of that shape.
func (s *Service) Grid(ctx context.Context, session string) (grid.Grid, error) {
	g, _, err := s.channel.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	return grid.Normalize(g, s.minRows, s.minCols), nil
}

// UpdateCell sets one cell of the session's grid and returns the updated,
// normalized grid. Writing past the current shape grows the grid.
// Any upload still decoding for the session is superseded.
func (s *Service) UpdateCell(ctx context.Context, session string, row, col int, cell grid.Cell) (grid.Grid, error) {
	if row < 0 || col < 0 || row >= MaxEditRows || col >= MaxEditCols {
		return nil, fmt.Errorf("%w: row %d, column %d", ErrInvalidCell, row, col)
	}

	var out grid.Grid
	err := s.sel.locked(session, true, func() error {
		g, err := s.Grid(ctx, session)
		if err != nil {
			return err
		}
		rows, cols := max(g.Rows(), row+1), max(g.Width(), col+1)
		if (rows > g.Rows() || cols > g.Width()) && rows*cols > MaxEditCells {
			return fmt.Errorf("%w: %s would grow the sheet to %d cells", ErrInvalidCell, grid.Ref(row, col), rows*cols)
		}
		g = grid.Normalize(g.Set(row, col, cell), s.minRows, s.minCols)
		if err := s.channel.Put(ctx, session, g); err != nil {
			return fmt.Errorf("store grid: %w", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("cell updated", "ref", grid.Ref(row, col), "kind", cell.Kind())
	return out, nil
}

// Export encodes the session's normalized grid as format.
// An unknown format name yields a *codec.EncodeError wrapping
// codec.ErrUnsupportedFormat.
func (s *Service) Export(ctx context.Context, session, format string) ([]byte, codec.Format, error) {
	f, err := codec.ParseFormat(format)
	if err != nil {
		return nil, "", &codec.EncodeError{Format: codec.Format(format), Err: codec.ErrUnsupportedFormat}
	}

	g, err := s.Grid(ctx, session)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	data, err := codec.Encode(g, f)
	if err != nil {
		return nil, "", err
	}

	logging.FromContext(ctx).Info("export completed",
		"format", f,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, f, nil
}

// Clear drops the session's grid ("Open New File"). Any upload still
// decoding for the session is superseded.
func (s *Service) Clear(ctx context.Context, session string) error {
	return s.sel.locked(session, true, func() error {
		return s.channel.Clear(ctx, session)
	})
}

// PendingUploads reports how many sessions have an upload in flight.
func (s *Service) PendingUploads() int {
	return s.sel.pending()
}

// UploadLimiterStatus returns the current decode limiter state.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until all in-flight decodes finish or ctx is done.
// Used during graceful shutdown.
func (s *Service) WaitForUploads(ctx context.Context) error {
	active := s.limiter.ActiveCount()
	if active > 0 {
		slog.Info("waiting for uploads to finish", "active", active)
	}
	return s.limiter.WaitForDrain(ctx)
}
