package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/JonMunkholm/overlap/internal/logging"
	"github.com/JonMunkholm/overlap/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// render writes a full page with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render failed", "path", r.URL.Path, "error", err)
	}
}

// handleDashboard renders the upload form and the live workbooks.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "Workbooks", templates.Dashboard(s.service.ListWorkbooks(), nil))
}

// handleWorkbookPage renders the datasets of a workbook and its forms.
func (s *Server) handleWorkbookPage(w http.ResponseWriter, r *http.Request) {
	_, info, err := s.service.Workbook(chi.URLParam(r, "id"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, info.Label, templates.WorkbookPage(info, nil))
}

// handleComparePage runs the compare form and shows the result with
// download buttons.
func (s *Server) handleComparePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := decodeCompareRequest(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	cmp, table, err := s.service.Compare(r.Context(), id, req)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	_, info, err := s.service.Workbook(id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	title := cmp.Subject.Name + " vs " + strings.Join(cmp.ReferenceNames(), ", ")
	render(w, r, http.StatusOK, title, templates.ResultPage(info, title, table, r.PostForm))
}

// handleGapsPage runs the gap form.
func (s *Server) handleGapsPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := decodeGapRequest(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	table, err := s.service.Gaps(r.Context(), id, req)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	_, info, err := s.service.Workbook(id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	title := "In " + req.New + " but not in " + req.Canonical
	render(w, r, http.StatusOK, title, templates.ResultPage(info, title, table, nil))
}

// handleSearchPage runs the search form.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))

	found, err := s.service.Search(r.Context(), id, q, keyColumnFrom(query))
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	_, info, err := s.service.Workbook(id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "Search", templates.SearchPage(info, q, found))
}

// pageError shows err above the workbook forms so the user can adjust the
// settings and retry. Without a live workbook it falls back to respondError.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if isHTMX(r) {
		fail(w, r, err)
		return
	}

	_, info, lookupErr := s.service.Workbook(chi.URLParam(r, "id"))
	if lookupErr != nil {
		fail(w, r, err)
		return
	}

	status := statusFor(err)
	msg := core.MapError(err)
	logError(r, err, status, msg.Code)
	render(w, r, status, info.Label, templates.WorkbookPage(info, templates.ErrorAlert(msg.Message, msg.Action, msg.Code)))
}
