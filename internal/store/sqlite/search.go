package sqlite

import (
	"context"
	"fmt"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// SearchDocuments runs the composed filter query and returns one page plus the
// distinct total for the whole filtered set. The count and page queries share
// one predicate builder, so they can never disagree about what "the filtered
// set" means. Tag lists for the returned rows come from a single batched
// lookup.
func (s *Store) SearchDocuments(ctx context.Context, c domain.SearchCriteria, requesterID string, includeGranted bool) (*domain.SearchResult, error) {
	c.Normalize()

	if c.MatchAll && len(c.TagIDs) == 0 {
		return nil, store.ErrInvalidInput.WithMessage("matchAll requires a non-empty tag set")
	}

	base := basePredicates(c, requesterID, includeGranted, baseOptions{withTags: true, withType: true})

	// Total over the identical predicate set. DISTINCT guards against any
	// future predicate that joins tag rows in.
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT d.id) FROM documents d`+base.where(),
		base.params()...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	result := &domain.SearchResult{
		Items:    []*domain.DocumentSummary{},
		Total:    total,
		Page:     c.Page,
		PageSize: c.PageSize,
	}

	// A page past the end of the set is an empty page, not an error.
	if int64(c.Offset()) >= total {
		return result, nil
	}

	order, orderArgs := orderClause(c)
	args := base.params(orderArgs...)
	args = append(args, c.PageSize, c.Offset())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+aliasColumns("d", documentColumns)+` FROM documents d`+
			base.where()+order+` LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	tagsByDoc, err := s.TagsForDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("batch tags: %w", err)
	}

	for _, d := range docs {
		result.Items = append(result.Items, &domain.DocumentSummary{
			ID:            d.ID,
			OwnerID:       d.OwnerID,
			Title:         d.Title,
			Description:   d.Description,
			FileName:      d.FileName,
			Size:          d.Size,
			ContentType:   d.ContentType,
			IsPublic:      d.IsPublic,
			ViewCount:     d.ViewCount,
			DownloadCount: d.DownloadCount,
			CreatedAt:     d.CreatedAt,
			Tags:          tagsByDoc[d.ID],
		})
	}

	return result, nil
}
