package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// shareLinkColumns is the ordered list of columns selected in share link
// queries. Must match the scan order in scanShareLink.
const shareLinkColumns = `id, token, document_id, created_by, expires_at,
	password_hash, download_limit, download_count, created_at`

// scanShareLink scans a sql.Row (or sql.Rows via its Scan method) into a domain.ShareLink.
func scanShareLink(scanner interface{ Scan(dest ...any) error }) (*domain.ShareLink, error) {
	var l domain.ShareLink

	var (
		expiresAt     sql.NullString
		passwordHash  sql.NullString
		downloadLimit sql.NullInt64
		createdAt     string
	)

	err := scanner.Scan(
		&l.ID,
		&l.Token,
		&l.DocumentID,
		&l.CreatedBy,
		&expiresAt,
		&passwordHash,
		&downloadLimit,
		&l.DownloadCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	l.ExpiresAt, err = parseNullableTime(expiresAt)
	if err != nil {
		return nil, err
	}
	if passwordHash.Valid {
		l.PasswordHash = passwordHash.String
	}
	l.DownloadLimit = int64Ptr(downloadLimit)

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// CreateShareLink inserts the link. A token collision is reported as
// store.ErrAlreadyExists; the existing row is never overwritten.
func (s *Store) CreateShareLink(ctx context.Context, l *domain.ShareLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO share_links (`+shareLinkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.Token,
		l.DocumentID,
		l.CreatedBy,
		nullTimeString(l.ExpiresAt),
		nullString(l.PasswordHash),
		nullInt64Ptr(l.DownloadLimit),
		l.DownloadCount,
		formatTime(l.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert share link: %w", err)
	}
	return nil
}

// GetShareLinkByID retrieves a share link by its ID.
// Returns store.ErrNotFound if the link does not exist.
func (s *Store) GetShareLinkByID(ctx context.Context, id string) (*domain.ShareLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE id = ?`, id)

	l, err := scanShareLink(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetShareLinkByToken retrieves a share link by its token.
// Returns store.ErrNotFound if no link carries the token.
func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE token = ?`, token)

	l, err := scanShareLink(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListShareLinksForDocument returns all links bound to a document, newest
// first. Expired and exhausted links are included; they persist until revoked.
func (s *Store) ListShareLinksForDocument(ctx context.Context, documentID string) ([]*domain.ShareLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shareLinkColumns+` FROM share_links
		WHERE document_id = ?
		ORDER BY created_at DESC, id ASC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("query share links: %w", err)
	}
	defer rows.Close()

	var links []*domain.ShareLink
	for rows.Next() {
		l, err := scanShareLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if links == nil {
		links = []*domain.ShareLink{}
	}

	return links, nil
}

// DeleteShareLink removes the link.
// Returns store.ErrNotFound if the link does not exist.
func (s *Store) DeleteShareLink(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM share_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete share link: %w", err)
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

// ConsumeShareLink increments the link's download count, conditioned on the
// count still being below the ceiling at commit time, and bumps the document's
// download counter in the same transaction. The WHERE guard makes concurrent
// redemptions against the last remaining download race-free: exactly one
// UPDATE reports an affected row, every other caller gets false.
func (s *Store) ConsumeShareLink(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE share_links
		SET download_count = download_count + 1
		WHERE id = ? AND (download_limit IS NULL OR download_count < download_limit)`,
		id)
	if err != nil {
		return false, fmt.Errorf("increment link count: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET download_count = download_count + 1
		WHERE id = (SELECT document_id FROM share_links WHERE id = ?) AND deleted_at IS NULL`,
		id); err != nil {
		return false, fmt.Errorf("increment document count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
