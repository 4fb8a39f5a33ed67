package api

import (
	"github.com/starford/journal/internal/index"
	"github.com/starford/journal/internal/journal"
)

// AddEntryRequest is the request body for adding an entry.
type AddEntryRequest struct {
	Input string `json:"input" example:"tomorrow call the dentist #task" validate:"required"`
}

// CreateNoteRequest is the request body for creating a note next to a page.
type CreateNoteRequest struct {
	Title string `json:"title" example:"Sprint planning" validate:"required"`
}

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = journal.PageDetail

// PageListItem is a lightweight item in a list response (aliased from the domain layer).
type PageListItem = journal.PageListItem

// NoteDetail is returned after a note is created (aliased from the domain layer).
type NoteDetail = journal.NoteDetail

// PageListResponse wraps page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
}

// SyncResponse lists the files linked by a synchronization.
type SyncResponse struct {
	Added []string `json:"added" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
