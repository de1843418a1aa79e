package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/JonMunkholm/overlap/internal/source"
	"github.com/go-chi/chi/v5"
)

// maxRequestBody bounds JSON request bodies that carry no dataset contents.
const maxRequestBody = 1 << 20

// handleUpload accepts a multipart .xlsx or .csv upload. Browser form posts
// are redirected to the workbook page; API calls get the session summary.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	body, ok := limitUpload(w, r, maxSize)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		fail(w, r, body.readError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, errNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, r, body.readError(err))
		return
	}

	info, err := s.service.LoadWorkbook(r.Context(), header.Filename, func(context.Context) (*core.Workbook, error) {
		return source.Load(header.Filename, data)
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSONStatus(w, http.StatusCreated, info)
		return
	}
	http.Redirect(w, r, "/workbook/"+url.PathEscape(info.ID), http.StatusSeeOther)
}

// handleUploadJSON accepts a workbook as a JSON datasets payload.
func (s *Server) handleUploadJSON(w http.ResponseWriter, r *http.Request) {
	body, ok := limitUpload(w, r, s.cfg.Upload.MaxFileSize)
	if !ok {
		return
	}

	data, err := io.ReadAll(body)
	if err != nil {
		fail(w, r, body.readError(err))
		return
	}

	label := strings.TrimSpace(r.URL.Query().Get("label"))
	if label == "" {
		label = "JSON upload"
	}

	info, err := s.service.LoadWorkbook(r.Context(), label, func(context.Context) (*core.Workbook, error) {
		return source.DecodeJSON(bytes.NewReader(data))
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, info)
}

// PostgresRequest names the tables to load as datasets.
type PostgresRequest struct {
	Tables []string `json:"tables"`
	Label  string   `json:"label,omitempty"`
}

// handleUploadPostgres loads database tables into a new workbook session.
func (s *Server) handleUploadPostgres(w http.ResponseWriter, r *http.Request) {
	if !s.loader.Enabled() {
		fail(w, r, source.ErrNoDatabase)
		return
	}

	var req PostgresRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = strings.Join(req.Tables, ", ")
	}

	info, err := s.service.LoadWorkbook(r.Context(), label, func(ctx context.Context) (*core.Workbook, error) {
		return s.loader.Load(ctx, req.Tables)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, info)
}

// handleListWorkbooks returns the live workbook sessions.
func (s *Server) handleListWorkbooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ListWorkbooks())
}

// handleGetWorkbook returns the dataset summary of a workbook.
func (s *Server) handleGetWorkbook(w http.ResponseWriter, r *http.Request) {
	_, info, err := s.service.Workbook(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, info)
}

// handleDeleteWorkbook ends a workbook session.
func (s *Server) handleDeleteWorkbook(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteWorkbook(chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthResponse reports liveness and load.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Workbooks int                      `json:"workbooks"`
	Uploads   core.UploadLimiterStatus `json:"uploads"`
	Database  bool                     `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:    "ok",
		Workbooks: len(s.service.ListWorkbooks()),
		Uploads:   s.service.UploadLimiterStatus(),
		Database:  s.loader.Enabled(),
	})
}

// uploadBody caps a request body at limit bytes and remembers whether a
// read ran into the cap. Multipart parsing can surface a truncated body as a
// malformed header, so the flag is the only reliable signal.
type uploadBody struct {
	io.ReadCloser
	limit    int64
	exceeded bool
}

func (b *uploadBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		b.exceeded = true
	}
	return n, err
}

// readError turns a failure while reading the body into a user-facing
// upload error.
func (b *uploadBody) readError(err error) error {
	var tooLarge *http.MaxBytesError
	if b.exceeded || errors.As(err, &tooLarge) {
		return fileTooLarge(b.limit)
	}
	return fmt.Errorf("%w: %v", errInvalidRequest, err)
}

// limitUpload replaces r.Body with a capped reader. A declared length over
// the limit is rejected before anything is read.
func limitUpload(w http.ResponseWriter, r *http.Request, limit int64) (*uploadBody, bool) {
	if r.ContentLength > limit {
		fail(w, r, fileTooLarge(limit))
		return nil, false
	}
	body := &uploadBody{ReadCloser: http.MaxBytesReader(w, r.Body, limit), limit: limit}
	r.Body = body
	return body, true
}

func fileTooLarge(limit int64) error {
	return fmt.Errorf("%w: limit is %s", errFileTooLarge, formatLimit(limit))
}

func formatLimit(limit int64) string {
	if limit >= 1<<20 {
		return fmt.Sprintf("%d MB", limit>>20)
	}
	return fmt.Sprintf("%d bytes", limit)
}
