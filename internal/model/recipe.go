// Package model defines the value types shared by every layer of recipebook.
package model

import "strings"

// DefaultPageSize is the number of results the remote service returns per page.
const DefaultPageSize = 30

// Recipe is a single recipe as returned by the remote service and mirrored in the local store.
// ID is assigned by the remote service and never changes; every other field is replaced
// wholesale by a newer fetch for the same ID.
type Recipe struct {
	CookingInstructions *string
	ID                  string
	Title               string
	Publisher           string
	FeaturedImage       string
	SourceURL           string
	Description         string
	DateAdded           string
	DateUpdated         string
	Ingredients         []string
	LongDateAdded       int64
	LongDateUpdated     int64
	Rating              int
}

// HasInstructions reports whether the recipe carries non-blank cooking instructions.
func (r Recipe) HasInstructions() bool {
	return r.CookingInstructions != nil && strings.TrimSpace(*r.CookingInstructions) != ""
}

// SearchQuery describes one page request built from the current UI state.
// Category is a client-side concept and is never sent to the remote service.
type SearchQuery struct {
	Query    string
	Category string
	Page     int
}

// Normalize returns a copy with Page clamped to at least 1.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Next      *string
	Previous  *string
	Results   []Recipe
	Count     int
	FromCache bool // results came from the local store after a transport failure
}

// HasNext reports whether the remote service advertised another page.
func (r SearchResponse) HasNext() bool {
	return r.Next != nil && *r.Next != ""
}
