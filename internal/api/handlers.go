package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/journal/internal/index"
	"github.com/starford/journal/internal/journal"
)

var monthRe = regexp.MustCompile(`^\d{4}(-\d{2})?$`)

// Handler holds API route handlers.
type Handler struct {
	svc *journal.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *journal.Service) *Handler {
	return &Handler{svc: svc}
}

// pageInput extracts the date phrase from the URL. Phrases with spaces arrive
// encoded ("next%20fri") or with "+" or "_" between words.
func pageInput(r *http.Request) string {
	raw := chi.URLParam(r, "input")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if !strings.HasPrefix(raw, "+") {
		raw = strings.ReplaceAll(raw, "+", " ")
	}
	return strings.ReplaceAll(raw, "_", " ")
}

// ListPages handles GET /api/pages.
//
//	@Summary		List indexed pages, newest first
//	@Tags			pages
//	@Produce		json
//	@Param			month	query		string	false	"YYYY or YYYY-MM"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	PageListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month := q.Get("month")
	if month != "" && !monthRe.MatchString(month) {
		writeJSON(w, http.StatusBadRequest, errorBody("month must be YYYY or YYYY-MM"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, err := h.svc.ListPages(r.Context(), month, limit)
	if err != nil {
		writeError(w, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items})
}

// GetPage handles GET /api/pages/{input}.
//
//	@Summary		Get an existing page by date phrase
//	@Tags			pages
//	@Produce		json
//	@Param			input	path		string	true	"Date phrase (today, -1, next_fri, 2024-01-31)"
//	@Success		200		{object}	PageDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{input} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetPage(r.Context(), pageInput(r))
	if err != nil {
		writeError(w, "get page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// AddEntry handles POST /api/entries.
//
//	@Summary		Open or create a page and add the memo of the input
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddEntryRequest	true	"Free-text input"
//	@Success		200		{object}	PageDetail
//	@Success		201		{object}	PageDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	page, err := h.svc.Enter(r.Context(), req.Input)
	if err != nil {
		writeError(w, "add entry", err)
		return
	}
	status := http.StatusOK
	if page.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, page)
}

// CreateNote handles POST /api/pages/{input}/notes.
//
//	@Summary		Create a note file in the page's notes folder and link it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			input	path		string				true	"Date phrase"
//	@Param			body	body		CreateNoteRequest	true	"Note title"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{input}/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), pageInput(r), req.Title)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// SyncPage handles POST /api/pages/{input}/sync.
//
//	@Summary		Link notes-folder files the page does not reference yet
//	@Tags			pages
//	@Produce		json
//	@Param			input	path		string	true	"Date phrase"
//	@Success		200		{object}	SyncResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{input}/sync [post]
func (h *Handler) SyncPage(w http.ResponseWriter, r *http.Request) {
	added, err := h.svc.Sync(r.Context(), pageInput(r))
	if err != nil {
		writeError(w, "sync page", err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Added: added})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across pages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
