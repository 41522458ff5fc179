package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/vibe-studio/internal/dialog"
	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/publish"
)

// registerViews mounts the read-only endpoints the editor polls to redraw
// itself. They stay outside the rate limiter.
func registerViews(r chi.Router, s *Server) {
	r.Get("/api/state", s.handleState)
	r.Get("/api/preview", s.handlePreview)
}

func registerAPI(r chi.Router, s *Server) {

	r.Route("/api/pages", func(r chi.Router) {
		r.Get("/", s.handleListPages)
		r.Post("/", s.handleAddPage)
		r.Delete("/{id}", s.handleDeletePage)
		r.Put("/{id}/content", s.handleUpdateContent)
		r.Post("/{id}/select", s.handleSelectPage)
	})

	r.Post("/api/upload", s.handleUpload)

	r.Post("/api/publish", s.handlePublish)
	r.Get("/api/published", s.handleListPublished)
	r.Get("/api/published/{name}", s.handleGetPublished)

	r.Post("/api/playback", s.handleStartPlayback)
	r.Delete("/api/playback", s.handleStopPlayback)

	r.Post("/api/preview/toggle", s.handleTogglePreview)
}

// Request bodies. A nil pointer is a cancelled dialog.
type (
	nameRequest struct {
		Name *string `json:"name"`
	}
	contentRequest struct {
		Content string `json:"content"`
	}
	speedRequest struct {
		Speed *string `json:"speed"`
	}
)

type pageListResponse struct {
	Pages    []pages.Page `json:"pages"`
	ActiveID string       `json:"active_id"`
}

type publishResponse struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type publishedResponse struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.State())
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	list := s.shell.Pages().List()
	if list == nil {
		list = []pages.Page{}
	}
	writeJSON(w, http.StatusOK, pageListResponse{Pages: list, ActiveID: s.shell.Pages().ActiveID()})
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	page, ok, err := s.shell.AddPage(r.Context(), dialog.Optional(req.Name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.DeletePage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.shell.Pages().Get(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
		return
	}

	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.shell.Edit(r.Context(), id, req.Content); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectPage(w http.ResponseWriter, r *http.Request) {
	err := s.shell.Select(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, pages.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload loads a multipart project upload. Browsers strip directories
// from part filenames, so the editor sends each file's relative path in a
// parallel "paths" field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart upload: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	paths := r.MultipartForm.Value["paths"]
	files := make([]pages.File, len(headers))
	for i, fh := range headers {
		name := fh.Filename
		if len(paths) == len(headers) && paths[i] != "" {
			name = paths[i]
		}
		files[i] = pages.File{Name: name, Open: openPart(fh)}
	}

	loaded, err := s.shell.Upload(r.Context(), files)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(loaded) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, pageListResponse{Pages: loaded, ActiveID: loaded[0].ID})
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	link, ok, err := s.shell.Publish(r.Context(), dialog.Optional(req.Name), s.origin(r))
	if errors.Is(err, publish.ErrReservedName) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{Name: *req.Name, Link: link})
}

func (s *Server) handleListPublished(w http.ResponseWriter, r *http.Request) {
	names, err := s.shell.Registry().Names(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetPublished(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	html, found, err := s.shell.Registry().Resolve(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not published"})
		return
	}
	writeJSON(w, http.StatusOK, publishedResponse{Name: name, HTML: html})
}

func (s *Server) handleStartPlayback(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if !decodeBody(w, r, &req) {
		return
	}

	started, err := s.shell.StartPlayback(r.Context(), dialog.Optional(req.Speed))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !started {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusAccepted, s.shell.Engine().State())
}

func (s *Server) handleStopPlayback(w http.ResponseWriter, r *http.Request) {
	s.shell.StopPlayback()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTogglePreview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"visible": s.shell.TogglePreview()})
}

// handlePreview serves the document the preview frame loads. A hidden
// preview has no document.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	view := s.shell.Preview()
	if !view.Visible {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	doc, err := s.renderer.PreviewDocument(view.Name, view.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(doc))
}

// decodeBody reads an optional JSON body. An empty body leaves v zeroed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
	return false
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
