package api

import (
	"github.com/starford/labnote/internal/labservice"
	"github.com/starford/labnote/internal/models"
	"github.com/starford/labnote/internal/search"
)

// SetQueryRequest is the body of PUT /search/query.
type SetQueryRequest struct {
	Query string `json:"query" example:"pcr gel"`
}

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest = labservice.EntryInput

// CreateNotebookRequest is the request body for creating a notebook.
type CreateNotebookRequest = labservice.NotebookInput

// UpdateNotebookRequest is the request body for patching a notebook.
type UpdateNotebookRequest = labservice.NotebookPatch

// SearchResponse is returned by GET /search.
type SearchResponse = labservice.SearchResponse

// SearchState is the full session view.
type SearchState = search.State

// SuggestionsResponse wraps autocomplete suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// HistoryResponse wraps the committed query history.
type HistoryResponse struct {
	History []string `json:"history" validate:"required"`
}

// EntryListResponse wraps entry listings.
type EntryListResponse struct {
	Entries []models.Entry `json:"entries" validate:"required"`
	Total   int            `json:"total" example:"42" validate:"required"`
}

// NotebookListResponse wraps notebook listings.
type NotebookListResponse struct {
	Notebooks []labservice.NotebookView `json:"notebooks" validate:"required"`
}

// TagListResponse wraps tag statistics.
type TagListResponse struct {
	Tags []labservice.TagStat `json:"tags" validate:"required"`
}
