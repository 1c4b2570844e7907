package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/labnote/internal/labservice"
	"github.com/starford/labnote/internal/search"
)

// Handler holds API route handlers.
type Handler struct {
	svc *labservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *labservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Search handles GET /api/search.
//
//	@Summary		Commit a search and return ranked results
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Search query"
//	@Param			kind	query		string	false	"Result kind"	Enums(entry, notebook, tag)
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, ok := search.ParseKind(q.Get("kind"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("kind must be one of entry, notebook, tag"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Search(q.Get("q"), kind))
}

// SetQuery handles PUT /api/search/query.
//
//	@Summary		Update the live query without recording history
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetQueryRequest	true	"Live query"
//	@Success		200		{object}	SearchState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/query [put]
func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req SetQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.SetQuery(req.Query))
}

// State handles GET /api/search/state.
//
//	@Summary		Current search session state
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	SearchState
//	@Security		BearerAuth
//	@Router			/search/state [get]
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// Suggestions handles GET /api/search/suggestions.
//
//	@Summary		Autocomplete suggestions for a query
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Partial query"
//	@Success		200	{object}	SuggestionsResponse
//	@Security		BearerAuth
//	@Router			/search/suggestions [get]
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: h.svc.Suggest(r.URL.Query().Get("q"))})
}

// History handles GET /api/search/history.
//
//	@Summary		Recent committed queries
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/search/history [get]
func (h *Handler) History(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HistoryResponse{History: h.svc.History()})
}

// ClearHistory handles DELETE /api/search/history.
//
//	@Summary		Clear the search history
//	@Tags			search
//	@Success		204	"History cleared"
//	@Security		BearerAuth
//	@Router			/search/history [delete]
func (h *Handler) ClearHistory(w http.ResponseWriter, _ *http.Request) {
	h.svc.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List entries, newest first
//	@Tags			entries
//	@Produce		json
//	@Param			notebook_id	query		string	false	"Filter by notebook"
//	@Param			tag			query		string	false	"Filter by tag"
//	@Success		200			{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := h.svc.ListEntries(r.Context(), labservice.EntryFilter{
		NotebookID: q.Get("notebook_id"),
		Tag:        q.Get("tag"),
	})
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries, Total: len(entries)})
}

// CreateEntry handles POST /api/entries.
//
//	@Summary		Create a new entry
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEntryRequest	true	"Entry to create"
//	@Success		201		{object}	models.Entry
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.CreateEntry(r.Context(), req)
	if err != nil {
		writeError(w, "create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get a single entry
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	models.Entry
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ListNotebooks handles GET /api/notebooks.
//
//	@Summary		List notebooks with entry counts
//	@Tags			notebooks
//	@Produce		json
//	@Success		200	{object}	NotebookListResponse
//	@Security		BearerAuth
//	@Router			/notebooks [get]
func (h *Handler) ListNotebooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NotebookListResponse{Notebooks: h.svc.ListNotebooks(r.Context())})
}

// CreateNotebook handles POST /api/notebooks.
//
//	@Summary		Create a notebook
//	@Tags			notebooks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNotebookRequest	true	"Notebook to create"
//	@Success		201		{object}	models.Notebook
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks [post]
func (h *Handler) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	var req CreateNotebookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	nb, err := h.svc.CreateNotebook(r.Context(), req)
	if err != nil {
		writeError(w, "create notebook", err)
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

// GetNotebook handles GET /api/notebooks/{id}.
//
//	@Summary		Get a notebook
//	@Tags			notebooks
//	@Produce		json
//	@Param			id	path		string	true	"Notebook id"
//	@Success		200	{object}	labservice.NotebookView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [get]
func (h *Handler) GetNotebook(w http.ResponseWriter, r *http.Request) {
	nb, err := h.svc.GetNotebook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get notebook", err)
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

// UpdateNotebook handles PUT /api/notebooks/{id}.
//
//	@Summary		Update a notebook's title, description or color
//	@Tags			notebooks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Notebook id"
//	@Param			body	body		UpdateNotebookRequest	true	"Fields to change"
//	@Success		200		{object}	models.Notebook
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [put]
func (h *Handler) UpdateNotebook(w http.ResponseWriter, r *http.Request) {
	var req UpdateNotebookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	nb, err := h.svc.UpdateNotebook(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update notebook", err)
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

// DeleteNotebook handles DELETE /api/notebooks/{id}.
//
//	@Summary		Delete an empty notebook
//	@Tags			notebooks
//	@Param			id	path	string	true	"Notebook id"
//	@Success		204	"Notebook deleted"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notebooks/{id} [delete]
func (h *Handler) DeleteNotebook(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNotebook(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete notebook", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tags handles GET /api/tags.
//
//	@Summary		Tag usage statistics
//	@Tags			tags
//	@Produce		json
//	@Param			sort	query		string	false	"Sort order"	Enums(count, name, recent)
//	@Param			filter	query		string	false	"Substring filter"
//	@Success		200		{object}	TagListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tags, err := h.svc.TagStats(r.Context(), q.Get("sort"), q.Get("filter"))
	if err != nil {
		writeError(w, "tag stats", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// Stats handles GET /api/stats.
//
//	@Summary		Dashboard counters
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	labservice.Stats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

// Export handles GET /api/export.
//
//	@Summary		Download every entry and notebook as JSON
//	@Tags			export
//	@Produce		json
//	@Success		200	{object}	labservice.ExportDocument
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc := h.svc.Export(r.Context())
	w.Header().Set("Content-Disposition", `attachment; filename="`+labservice.ExportFileName(timeOf(doc))+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// timeOf recovers the export timestamp for the download file name.
func timeOf(doc labservice.ExportDocument) time.Time {
	t, err := time.Parse(time.RFC3339, doc.ExportDate)
	if err != nil {
		return time.Now()
	}
	return t
}
