package domain

// FacetCount is one bucket of a facet breakdown.
type FacetCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// TagFacetCount is a tag bucket; it carries the tag identity so clients can
// turn a facet click into a tag filter.
type TagFacetCount struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Facets are aggregated breakdowns of the current filtered result set.
// They are computed over the same base predicates as the search itself, so
// every count refers only to documents the requester can see.
type Facets struct {
	ByType    []FacetCount    `json:"by_type"`
	ByTag     []TagFacetCount `json:"by_tag"`
	ByCreator []FacetCount    `json:"by_creator"`
}

// EmptyFacets returns a zero-valued facet set with non-nil slices.
// Search degrades to this when facet computation fails.
func EmptyFacets() *Facets {
	return &Facets{
		ByType:    []FacetCount{},
		ByTag:     []TagFacetCount{},
		ByCreator: []FacetCount{},
	}
}
