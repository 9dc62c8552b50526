package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, color, description, created_by, usage_count, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		color       sql.NullString
		description sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&color,
		&description,
		&t.CreatedBy,
		&t.UsageCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if color.Valid {
		t.Color = color.String
	}
	if description.Valid {
		t.Description = description.String
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// recomputeTagUsage re-derives the tag's usage count from the association
// table. Always a full COUNT(*), never an increment, so any drift heals on the
// next association change.
func recomputeTagUsage(ctx context.Context, q dbtx, tagID string) error {
	_, err := q.ExecContext(ctx, `
		UPDATE tags
		SET usage_count = (SELECT COUNT(*) FROM document_tags WHERE tag_id = ?)
		WHERE id = ?`,
		tagID, tagID)
	return err
}

// tagIDsForDocument returns the IDs of every tag currently associated with the
// document.
func tagIDsForDocument(ctx context.Context, q dbtx, documentID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT tag_id FROM document_tags WHERE document_id = ?`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate name (names are case-sensitive
// unique).
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (`+tagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		nullString(t.Color),
		nullString(t.Description),
		t.CreatedBy,
		t.UsageCount,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTagByID retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByID(ctx context.Context, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByName retrieves a tag by its exact, case-sensitive name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags ordered by usage count (most used first), then name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY usage_count DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}

	return tags, nil
}

// UpdateTag persists the tag's mutable fields (name, color, description).
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, color = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		t.Name,
		nullString(t.Color),
		nullString(t.Description),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("update tag: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTag removes the tag and all of its associations in one transaction.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE tag_id = ?`, id); err != nil {
		return fmt.Errorf("delete associations: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// AttachTags associates the given tags with a document. Re-attaching an
// already-associated tag is a no-op for that tag, and a failure on one tag is
// logged and skipped rather than aborting the batch. The returned count
// reflects rows actually added.
func (s *Store) AttachTags(ctx context.Context, documentID string, tagIDs []string) (int, error) {
	added := 0
	now := formatTime(time.Now().UTC())

	for _, tagID := range tagIDs {
		res, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_tags (document_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			documentID, tagID, now,
		)
		if err != nil {
			s.logger.Warn("attach tag failed, skipping",
				"document_id", documentID, "tag_id", tagID, "error", err)
			continue
		}
		n, err := res.RowsAffected()
		if err != nil {
			s.logger.Warn("attach tag rows affected, skipping",
				"document_id", documentID, "tag_id", tagID, "error", err)
			continue
		}
		if n == 0 {
			continue // already attached
		}
		if err := recomputeTagUsage(ctx, s.db, tagID); err != nil {
			s.logger.Warn("recompute tag usage failed",
				"tag_id", tagID, "error", err)
		}
		added++
	}

	return added, nil
}

// DetachTags removes associations symmetrically to AttachTags: per-tag
// best effort, idempotent, returned count reflects rows actually removed.
func (s *Store) DetachTags(ctx context.Context, documentID string, tagIDs []string) (int, error) {
	removed := 0

	for _, tagID := range tagIDs {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM document_tags WHERE document_id = ? AND tag_id = ?`,
			documentID, tagID,
		)
		if err != nil {
			s.logger.Warn("detach tag failed, skipping",
				"document_id", documentID, "tag_id", tagID, "error", err)
			continue
		}
		n, err := res.RowsAffected()
		if err != nil {
			s.logger.Warn("detach tag rows affected, skipping",
				"document_id", documentID, "tag_id", tagID, "error", err)
			continue
		}
		if n == 0 {
			continue // was not attached
		}
		if err := recomputeTagUsage(ctx, s.db, tagID); err != nil {
			s.logger.Warn("recompute tag usage failed",
				"tag_id", tagID, "error", err)
		}
		removed++
	}

	return removed, nil
}

// ReplaceTags reconciles the document's tag set to exactly tagIDs in one
// transaction, touching only the symmetric difference between the current and
// desired sets. Tags present in both sets are never removed and re-added, so
// concurrent usage-count readers see no churn on unchanged tags.
func (s *Store) ReplaceTags(ctx context.Context, documentID string, tagIDs []string) (store.TagChange, error) {
	var change store.TagChange

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return change, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := tagIDsForDocument(ctx, tx, documentID)
	if err != nil {
		return change, fmt.Errorf("load current tags: %w", err)
	}

	currentSet := make(map[string]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		desiredSet[id] = true
	}

	now := formatTime(time.Now().UTC())
	affected := make(map[string]bool)

	for _, tagID := range current {
		if desiredSet[tagID] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM document_tags WHERE document_id = ? AND tag_id = ?`,
			documentID, tagID,
		); err != nil {
			return change, fmt.Errorf("remove tag %s: %w", tagID, err)
		}
		affected[tagID] = true
		change.Removed++
	}

	for _, tagID := range tagIDs {
		if currentSet[tagID] || affected[tagID] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_tags (document_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			documentID, tagID, now,
		); err != nil {
			return change, fmt.Errorf("add tag %s: %w", tagID, err)
		}
		affected[tagID] = true
		change.Added++
	}

	for tagID := range affected {
		if err := recomputeTagUsage(ctx, tx, tagID); err != nil {
			return change, fmt.Errorf("recompute tag usage %s: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.TagChange{}, err
	}
	return change, nil
}

// DetachAllTags removes every association for the document and recomputes
// usage for each affected tag, in one transaction. Used when a document is
// deleted.
func (s *Store) DetachAllTags(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	affected, err := tagIDsForDocument(ctx, tx, documentID)
	if err != nil {
		return fmt.Errorf("load tag ids: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("delete associations: %w", err)
	}

	for _, tagID := range affected {
		if err := recomputeTagUsage(ctx, tx, tagID); err != nil {
			return fmt.Errorf("recompute tag usage %s: %w", tagID, err)
		}
	}

	return tx.Commit()
}

// TagsForDocuments returns each requested document's tags ordered by name, in
// one batched query. The result always contains every requested ID; documents
// without tags map to an empty slice.
func (s *Store) TagsForDocuments(ctx context.Context, documentIDs []string) (map[string][]*domain.Tag, error) {
	result := make(map[string][]*domain.Tag, len(documentIDs))
	for _, id := range documentIDs {
		result[id] = []*domain.Tag{}
	}
	if len(documentIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(documentIDs))
	for i, id := range documentIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT dt.document_id, t.id, t.name, t.color, t.description, t.created_by,
			t.usage_count, t.created_at, t.updated_at
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id IN (`+placeholders(len(documentIDs))+`)
		ORDER BY t.name ASC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query document tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var docID string
		var t domain.Tag
		var (
			color       sql.NullString
			description sql.NullString
			createdAt   string
			updatedAt   string
		)
		if err := rows.Scan(
			&docID,
			&t.ID,
			&t.Name,
			&color,
			&description,
			&t.CreatedBy,
			&t.UsageCount,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document tag: %w", err)
		}
		if color.Valid {
			t.Color = color.String
		}
		if description.Valid {
			t.Description = description.String
		}
		t.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		t.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}
		result[docID] = append(result[docID], &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// ResyncTagCounts re-derives every tag's usage count from the association
// table. It is an idempotent repair tool; the returned count is the number of
// tags whose stored value was actually wrong.
func (s *Store) ResyncTagCounts(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags
		SET usage_count = (SELECT COUNT(*) FROM document_tags dt WHERE dt.tag_id = tags.id)
		WHERE usage_count <> (SELECT COUNT(*) FROM document_tags dt WHERE dt.tag_id = tags.id)`)
	if err != nil {
		return 0, fmt.Errorf("resync tag counts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
