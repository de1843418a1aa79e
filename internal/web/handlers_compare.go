package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/JonMunkholm/overlap/internal/export"
	"github.com/JonMunkholm/overlap/internal/logging"
	"github.com/go-chi/chi/v5"
)

// CompareResponse is the result of a comparison.
type CompareResponse struct {
	WorkbookID string        `json:"workbook_id"`
	Subject    string        `json:"subject_dataset"`
	References []string      `json:"reference_datasets"`
	Policy     core.Policy   `json:"match_policy"`
	Result     TableResponse `json:"result"`
}

// handleCompare runs the matcher against a stored workbook.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := decodeCompareRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	cmp, table, err := s.service.Compare(r.Context(), id, req)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, CompareResponse{
		WorkbookID: id,
		Subject:    cmp.Subject.Name,
		References: cmp.ReferenceNames(),
		Policy:     cmp.Options.Policy,
		Result:     tableResponse(table),
	})
}

// GapResponse is the result of a gap detection.
type GapResponse struct {
	WorkbookID string        `json:"workbook_id"`
	New        string        `json:"new_dataset"`
	Canonical  string        `json:"canonical_dataset"`
	Result     TableResponse `json:"result"`
}

// handleGaps lists the keys of one dataset missing from another.
func (s *Server) handleGaps(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := decodeGapRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	table, err := s.service.Gaps(r.Context(), id, req)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, GapResponse{
		WorkbookID: id,
		New:        req.New,
		Canonical:  req.Canonical,
		Result:     tableResponse(table),
	})
}

// SearchResponse lists the datasets containing a key.
type SearchResponse struct {
	Query    string   `json:"query"`
	Datasets []string `json:"datasets"`
}

// handleSearch looks an identifier up across every dataset of a workbook.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))

	found, err := s.service.Search(r.Context(), chi.URLParam(r, "id"), q, keyColumnFrom(query))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, SearchResponse{Query: q, Datasets: found})
}

// handleExport runs a comparison and returns it as a download. The file is
// rendered in full before any byte is sent so that failures still get a
// proper error response.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := r.URL.Query()

	format, err := export.ParseFormat(query.Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	req, err := decodeCompareRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	cmp, table, err := s.service.Compare(r.Context(), id, req)
	if err != nil {
		fail(w, r, err)
		return
	}

	opts := export.Options{IndexColumn: strings.TrimSpace(query.Get("index_column"))}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(&buf, table, opts)
	default:
		err = export.WriteXLSX(&buf, cmp.Subject.Name, table, opts)
	}
	if err != nil {
		respondError(w, r, fmt.Errorf("write %s export: %w", format, err), http.StatusInternalServerError)
		return
	}

	filename := export.FileName(cmp.Subject.Name, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.WithFields(r.Context(), "workbook_id", id).Warn("export write failed", "error", err)
		return
	}

	logging.WithFields(r.Context(), "workbook_id", id).Info("result exported",
		"format", string(format),
		"rows", table.Len(),
		"bytes", buf.Len(),
	)
}
