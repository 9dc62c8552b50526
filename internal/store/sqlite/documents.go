package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// documentColumns is the ordered list of columns selected in document queries.
// Must match the scan order in scanDocument.
const documentColumns = `id, owner_id, title, description, file_name, storage_path,
	size, content_type, content_hash, is_public, view_count, download_count,
	created_at, updated_at, deleted_at`

// scanDocument scans a sql.Row (or sql.Rows via its Scan method) into a domain.Document.
func scanDocument(scanner interface{ Scan(dest ...any) error }) (*domain.Document, error) {
	var d domain.Document

	var (
		description sql.NullString
		contentHash sql.NullString
		isPublic    int
		createdAt   string
		updatedAt   string
		deletedAt   sql.NullString
	)

	err := scanner.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&description,
		&d.FileName,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&contentHash,
		&isPublic,
		&d.ViewCount,
		&d.DownloadCount,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		d.Description = description.String
	}
	if contentHash.Valid {
		d.ContentHash = contentHash.String
	}
	d.IsPublic = isPublic != 0

	d.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	d.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateDocument inserts a document and attaches the given tags in a single
// transaction. If any statement fails the whole creation rolls back; a
// partially tagged document is never visible.
func (s *Store) CreateDocument(ctx context.Context, doc *domain.Document, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		nullString(doc.Description),
		doc.FileName,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		nullString(doc.ContentHash),
		boolToInt(doc.IsPublic),
		doc.ViewCount,
		doc.DownloadCount,
		formatTime(doc.CreatedAt),
		formatTime(doc.UpdatedAt),
		nullTimeString(doc.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_tags (document_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			doc.ID, tagID, now,
		); err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
		if err := recomputeTagUsage(ctx, tx, tagID); err != nil {
			return fmt.Errorf("recompute tag usage %s: %w", tagID, err)
		}
	}

	return tx.Commit()
}

// GetDocument retrieves a document by ID.
// Soft-deleted documents are reported as store.ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND deleted_at IS NULL`, id)

	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDocumentByHash retrieves the active document with the given content hash.
// At most one active document per hash is the canonical policy target.
func (s *Store) GetDocumentByHash(ctx context.Context, hash string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE content_hash = ? AND deleted_at IS NULL
		ORDER BY created_at ASC LIMIT 1`, hash)

	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDocument persists the document's mutable metadata fields.
func (s *Store) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET title = ?, description = ?, is_public = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		doc.Title,
		nullString(doc.Description),
		boolToInt(doc.IsPublic),
		formatTime(doc.UpdatedAt),
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
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

// SoftDeleteDocument marks the document deleted, detaches every tag
// (recomputing usage per affected tag), and deletes its share links, all in
// one transaction.
func (s *Store) SoftDeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE documents SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(time.Now().UTC()),
		formatTime(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	affected, err := tagIDsForDocument(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("load tag ids: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete document_tags: %w", err)
	}
	for _, tagID := range affected {
		if err := recomputeTagUsage(ctx, tx, tagID); err != nil {
			return fmt.Errorf("recompute tag usage %s: %w", tagID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM share_links WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete share links: %w", err)
	}

	return tx.Commit()
}

// IncrementViewCount bumps the document's view counter.
func (s *Store) IncrementViewCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents SET view_count = view_count + 1
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// IncrementDownloadCount bumps the document's download counter.
func (s *Store) IncrementDownloadCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents SET download_count = download_count + 1
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return nil
}
