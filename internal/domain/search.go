package domain

import (
	"strings"
	"time"
)

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortKey selects the search result ordering.
type SortKey string

const (
	SortRelevance     SortKey = "relevance"
	SortCreated       SortKey = "created"
	SortSize          SortKey = "size"
	SortViewCount     SortKey = "view_count"
	SortDownloadCount SortKey = "download_count"
)

// ParseSortKey converts a string to a SortKey.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortRelevance, SortCreated, SortSize, SortViewCount, SortDownloadCount:
		return SortKey(s), true
	default:
		return SortRelevance, false
	}
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// VisibilityFilter is an explicit public/private filter. When empty, the
// implicit predicate applies: "public OR owned by requester" for an
// authenticated search, "public only" for an anonymous one.
type VisibilityFilter string

const (
	VisibilityAny     VisibilityFilter = ""
	VisibilityPublic  VisibilityFilter = "public"
	VisibilityPrivate VisibilityFilter = "private"
)

// TypeCategory is a coarse content-type bucket mapped to MIME matching rules.
type TypeCategory string

const (
	TypeNone         TypeCategory = ""
	TypeImage        TypeCategory = "image"
	TypeDocument     TypeCategory = "document"
	TypeSpreadsheet  TypeCategory = "spreadsheet"
	TypePresentation TypeCategory = "presentation"
	TypeText         TypeCategory = "text"
)

// ParseTypeCategory converts a string to a TypeCategory.
func ParseTypeCategory(s string) (TypeCategory, bool) {
	switch TypeCategory(s) {
	case TypeImage, TypeDocument, TypeSpreadsheet, TypePresentation, TypeText:
		return TypeCategory(s), true
	case TypeNone:
		return TypeNone, true
	default:
		return TypeNone, false
	}
}

// MimeRules returns the MIME matching rules for the category: prefixes matched
// against the start of the content type and substrings matched anywhere in it.
// A content type matches the category if any rule matches.
func (c TypeCategory) MimeRules() (prefixes, substrings []string) {
	switch c {
	case TypeImage:
		return []string{"image/"}, nil
	case TypeDocument:
		return []string{"application/pdf"}, []string{"msword", "wordprocessingml", "opendocument.text"}
	case TypeSpreadsheet:
		return nil, []string{"ms-excel", "spreadsheetml", "opendocument.spreadsheet", "csv"}
	case TypePresentation:
		return nil, []string{"ms-powerpoint", "presentationml", "opendocument.presentation"}
	case TypeText:
		return []string{"text/"}, nil
	default:
		return nil, nil
	}
}

// SearchCriteria is the full heterogeneous filter set the query composer
// accepts. The HTTP layer validates and type-coerces raw input into this
// structure before the engine sees it.
type SearchCriteria struct {
	Keyword       string
	TagIDs        []string
	MatchAll      bool
	TypeCategory  TypeCategory
	MimeType      string
	Visibility    VisibilityFilter
	CreatedAfter  *time.Time // inclusive
	CreatedBefore *time.Time // inclusive
	SortKey       SortKey
	SortDir       SortDirection
	Page          int
	PageSize      int
}

// Normalize trims the keyword and clamps pagination and ordering to valid
// values. A whitespace-only keyword becomes "no keyword filter".
func (c *SearchCriteria) Normalize() {
	c.Keyword = strings.TrimSpace(c.Keyword)
	if c.Page < 1 {
		c.Page = 1
	}
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	if c.SortKey == "" {
		c.SortKey = SortRelevance
	}
	if c.SortDir != SortAsc {
		c.SortDir = SortDesc
	}
}

// Offset returns the row offset for the current page.
func (c *SearchCriteria) Offset() int {
	return (c.Page - 1) * c.PageSize
}

// SearchResult is one page of matches plus the distinct total for the whole
// filtered set. Total is computed with the identical predicate set as the page.
type SearchResult struct {
	Items    []*DocumentSummary `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
