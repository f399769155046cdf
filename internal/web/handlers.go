package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetview/internal/codec"
	"github.com/JonMunkholm/sheetview/internal/core"
	"github.com/JonMunkholm/sheetview/internal/grid"
)

// maxCellRequestSize bounds the body of a cell edit.
const maxCellRequestSize = 1 << 20

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory
// before spilling to a temp file.
const multipartMemory = 8 << 20

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUploadPage renders the file picker.
func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = UploadPage(s.service.MaxFileSize()).Render(r.Context(), w)
}

// handleViewer renders the session's grid as an editable table.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	g, err := s.service.Grid(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = ViewerPage(g).Render(r.Context(), w)
}

// handleUpload decodes a multipart "file" and stores it as the session's grid.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.service.MaxFileSize()+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, codec.ErrTooLarge)
			return
		}
		respondError(w, r, errNoFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Upload(ctx, sessionFrom(ctx), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleUploadStatus reports the decode limiter state.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		core.UploadLimiterStatus
		Pending int `json:"pending"`
	}{
		UploadLimiterStatus: s.service.UploadLimiterStatus(),
		Pending:             s.service.PendingUploads(),
	})
}

// handleGrid returns the normalized grid in canonical JSON form.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	g, err := s.service.Grid(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	data, err := g.MarshalJSON()
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// cellRequest addresses a cell either by ref ("B3") or by zero-based row/col.
type cellRequest struct {
	Ref   string          `json:"ref"`
	Row   *int            `json:"row"`
	Col   *int            `json:"col"`
	Value json.RawMessage `json:"value"`
}

type cellResponse struct {
	Ref   string `json:"ref"`
	Value any    `json:"value"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
}

// handleUpdateCell edits one cell. The value keeps its JSON type: strings
// stay text, numbers and booleans stay typed, null clears the cell.
func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCellRequestSize)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	row, col, err := req.position()
	if err != nil {
		respondError(w, r, err)
		return
	}

	var cell grid.Cell
	if len(req.Value) > 0 {
		if err := cell.UnmarshalJSON(req.Value); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid cell value")
			return
		}
	}

	g, err := s.service.UpdateCell(r.Context(), sessionFrom(r.Context()), row, col, cell)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cellResponse{
		Ref:   grid.Ref(row, col),
		Value: cell.Value(),
		Rows:  g.Rows(),
		Cols:  g.Width(),
	})
}

func (c cellRequest) position() (row, col int, err error) {
	if c.Ref != "" {
		row, col, err = grid.ParseRef(c.Ref)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", core.ErrInvalidCell, err)
		}
		return row, col, nil
	}
	if c.Row == nil || c.Col == nil {
		return 0, 0, fmt.Errorf("%w: ref or row and col required", core.ErrInvalidCell)
	}
	return *c.Row, *c.Col, nil
}

// handleNew clears the session's grid ("Open New File").
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clear(r.Context(), sessionFrom(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleExport downloads the session's grid in the requested format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, f, err := s.service.Export(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", codec.ContentType(f))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": codec.ExportFileName(f)}))
	_, _ = w.Write(data)
}
