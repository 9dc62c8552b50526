package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/http/response"
)

// SearchResponse is the combined search payload.
type SearchResponse struct {
	Items    []*domain.DocumentSummary `json:"items"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
	Facets   *domain.Facets            `json:"facets,omitempty"`
}

// handleSearch runs an access-aware document search. Anonymous requests
// see public documents only. With facets=true the same filter set also
// drives facet aggregation.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID := getUserID(ctx)

	criteria, err := parseSearchCriteria(r)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	resp := SearchResponse{}
	if r.URL.Query().Get("facets") == "true" {
		result, facets, err := s.searchService.SearchWithFacets(ctx, criteria, requesterID)
		if err != nil {
			response.FromError(w, err, s.logger)
			return
		}
		resp.Items, resp.Total, resp.Page, resp.PageSize = result.Items, result.Total, result.Page, result.PageSize
		resp.Facets = facets
	} else {
		result, err := s.searchService.Search(ctx, criteria, requesterID)
		if err != nil {
			response.FromError(w, err, s.logger)
			return
		}
		resp.Items, resp.Total, resp.Page, resp.PageSize = result.Items, result.Total, result.Page, result.PageSize
	}

	response.Success(w, resp, s.logger)
}

// handleSearchFacets aggregates facet counts for the filtered document set,
// ignoring pagination.
func (s *Server) handleSearchFacets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID := getUserID(ctx)

	criteria, err := parseSearchCriteria(r)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	facets, err := s.searchService.Facets(ctx, criteria, requesterID)
	if err != nil {
		response.FromError(w, err, s.logger)
		return
	}

	response.Success(w, facets, s.logger)
}

// parseSearchCriteria converts raw query parameters into typed criteria.
// Unknown enum values are rejected rather than silently ignored.
func parseSearchCriteria(r *http.Request) (domain.SearchCriteria, error) {
	q := r.URL.Query()
	criteria := domain.SearchCriteria{
		Keyword:  q.Get("q"),
		MimeType: q.Get("mimeType"),
	}

	if tags := q.Get("tags"); tags != "" {
		for _, tagID := range strings.Split(tags, ",") {
			tagID = strings.TrimSpace(tagID)
			if tagID != "" {
				criteria.TagIDs = append(criteria.TagIDs, tagID)
			}
		}
	}
	criteria.MatchAll = q.Get("matchAll") == "true"

	if typ := q.Get("type"); typ != "" {
		category, ok := domain.ParseTypeCategory(typ)
		if !ok {
			return criteria, invalidParam("type", typ)
		}
		criteria.TypeCategory = category
	}

	switch vis := q.Get("visibility"); vis {
	case "", "public", "private":
		criteria.Visibility = domain.VisibilityFilter(vis)
	default:
		return criteria, invalidParam("visibility", vis)
	}

	if after := q.Get("createdAfter"); after != "" {
		t, err := parseTimeParam(after)
		if err != nil {
			return criteria, invalidParam("createdAfter", after)
		}
		criteria.CreatedAfter = &t
	}
	if before := q.Get("createdBefore"); before != "" {
		t, err := parseTimeParam(before)
		if err != nil {
			return criteria, invalidParam("createdBefore", before)
		}
		criteria.CreatedBefore = &t
	}

	if sort := q.Get("sort"); sort != "" {
		key, ok := domain.ParseSortKey(sort)
		if !ok {
			return criteria, invalidParam("sort", sort)
		}
		criteria.SortKey = key
	}
	switch dir := q.Get("dir"); dir {
	case "":
	case "asc":
		criteria.SortDir = domain.SortAsc
	case "desc":
		criteria.SortDir = domain.SortDesc
	default:
		return criteria, invalidParam("dir", dir)
	}

	if page := q.Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return criteria, invalidParam("page", page)
		}
		criteria.Page = n
	}
	if pageSize := q.Get("pageSize"); pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil || n < 1 {
			return criteria, invalidParam("pageSize", pageSize)
		}
		criteria.PageSize = n
	}

	return criteria, nil
}

// parseTimeParam accepts RFC 3339 timestamps and bare dates.
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
