package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/docvaultapp/docvault-server/internal/domain"
)

// facetCategories is the fixed bucket order for the type facet. Spreadsheet
// must precede text so "text/csv" lands in the spreadsheet bucket, keeping the
// buckets disjoint: every document falls in exactly one, so the facet counts
// sum to the filtered total.
var facetCategories = []domain.TypeCategory{
	domain.TypeImage,
	domain.TypeDocument,
	domain.TypeSpreadsheet,
	domain.TypePresentation,
	domain.TypeText,
}

// typeCaseExpr builds the CASE expression assigning each document to one type
// bucket, derived from the same MIME rules the search filter uses.
func typeCaseExpr() (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("CASE")
	for _, cat := range facetCategories {
		prefixes, substrings := cat.MimeRules()
		var alts []string
		for _, p := range prefixes {
			alts = append(alts, "d.content_type LIKE ?")
			args = append(args, p+"%")
		}
		for _, sub := range substrings {
			alts = append(alts, "d.content_type LIKE ?")
			args = append(args, "%"+sub+"%")
		}
		sb.WriteString(" WHEN " + strings.Join(alts, " OR ") + " THEN ?")
		args = append(args, string(cat))
	}
	sb.WriteString(" ELSE 'other' END")

	return sb.String(), args
}

// FacetDocuments computes type, tag, and creator breakdowns over the same base
// predicate set the search uses. The criteria's own tag and type filters are
// excluded: those are the dimensions being broken out. Visibility is part of
// the base predicates, so no facet ever counts a document the requester cannot
// see.
func (s *Store) FacetDocuments(ctx context.Context, c domain.SearchCriteria, requesterID string, includeGranted bool, topN int) (*domain.Facets, error) {
	c.Normalize()
	if topN < 1 {
		topN = 10
	}

	facets := domain.EmptyFacets()

	base := basePredicates(c, requesterID, includeGranted, baseOptions{})

	// By type: one grouped aggregation, disjoint CASE buckets.
	caseExpr, caseArgs := typeCaseExpr()
	args := append(caseArgs, base.params()...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+caseExpr+` AS category, COUNT(*) AS n
		FROM documents d`+base.where()+`
		GROUP BY category
		ORDER BY n DESC, category ASC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("facet by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc domain.FacetCount
		if err := rows.Scan(&fc.Label, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan type facet: %w", err)
		}
		facets.ByType = append(facets.ByType, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// By tag: join through the association table, top N.
	tagRows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, COUNT(DISTINCT d.id) AS n
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		JOIN documents d ON d.id = dt.document_id`+base.where()+`
		GROUP BY t.id, t.name
		ORDER BY n DESC, t.name ASC
		LIMIT ?`,
		base.params(topN)...)
	if err != nil {
		return nil, fmt.Errorf("facet by tag: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var fc domain.TagFacetCount
		if err := tagRows.Scan(&fc.TagID, &fc.Name, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan tag facet: %w", err)
		}
		facets.ByTag = append(facets.ByTag, fc)
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	// By creator: top N owners within the visible set.
	creatorRows, err := s.db.QueryContext(ctx,
		`SELECT d.owner_id, COUNT(*) AS n
		FROM documents d`+base.where()+`
		GROUP BY d.owner_id
		ORDER BY n DESC, d.owner_id ASC
		LIMIT ?`,
		base.params(topN)...)
	if err != nil {
		return nil, fmt.Errorf("facet by creator: %w", err)
	}
	defer creatorRows.Close()

	for creatorRows.Next() {
		var fc domain.FacetCount
		if err := creatorRows.Scan(&fc.Label, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan creator facet: %w", err)
		}
		facets.ByCreator = append(facets.ByCreator, fc)
	}
	if err := creatorRows.Err(); err != nil {
		return nil, err
	}

	return facets, nil
}
