package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jrnl/internal/index"
	"github.com/starford/jrnl/internal/journal"
)

const maxTitleLength = 200

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Validate validates the create request.
func (r CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&r.Tags, validation.Each(validation.Required)),
	)
}

// UpdateEntryRequest is the request body for updating an entry. Omitted
// fields are left unchanged.
type UpdateEntryRequest struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

// Validate validates the update request.
func (r UpdateEntryRequest) Validate() error {
	if r.Title == nil && r.Body == nil && r.Tags == nil {
		return validation.NewError("validation_empty_update", "at least one of title, body or tags is required")
	}
	var tags []string
	if r.Tags != nil {
		tags = *r.Tags
	}
	return validation.Errors{
		"title": validation.Validate(r.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
		"tags":  validation.Validate(tags, validation.Each(validation.Required)),
	}.Filter()
}

// listQuery holds parsed GET /entries parameters.
type listQuery struct {
	Limit  int
	Offset int
	Tag    string
	Sort   string
}

// Validate validates list parameters.
func (q listQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Limit, validation.Min(0), validation.Max(500)),
		validation.Field(&q.Offset, validation.Min(0)),
		validation.Field(&q.Sort, validation.In(index.SortDate, index.SortTitle, index.SortFilename)),
	)
}

// EntryDetail is the full entry response type (aliased from the domain layer).
type EntryDetail = journal.EntryDetail

// EntryListItem is a lightweight item in a list response.
type EntryListItem = journal.EntryListItem

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []EntryListItem `json:"entries"`
	Total   int             `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// TagCount is a tag with its usage count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagsResponse wraps tag counts.
type TagsResponse struct {
	Tags []TagCount `json:"tags"`
}
