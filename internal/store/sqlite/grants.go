package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

// grantColumns is the ordered list of columns selected in grant queries.
// Must match the scan order in scanGrant.
const grantColumns = `document_id, grantee_id, level, granted_by, created_at`

// scanGrant scans a sql.Row (or sql.Rows via its Scan method) into a domain.PermissionGrant.
func scanGrant(scanner interface{ Scan(dest ...any) error }) (*domain.PermissionGrant, error) {
	var g domain.PermissionGrant

	var (
		level     string
		createdAt string
	)

	err := scanner.Scan(
		&g.DocumentID,
		&g.GranteeID,
		&level,
		&g.GrantedBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	l, ok := domain.ParseGrantLevel(level)
	if !ok {
		return nil, fmt.Errorf("unknown grant level: %s", level)
	}
	g.Level = l

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// UpsertGrant creates the grant, or replaces the level of the existing grant
// for the same (document, grantee) pair.
func (s *Store) UpsertGrant(ctx context.Context, g *domain.PermissionGrant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO permission_grants (`+grantColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (document_id, grantee_id)
		DO UPDATE SET level = excluded.level, granted_by = excluded.granted_by`,
		g.DocumentID,
		g.GranteeID,
		g.Level.String(),
		g.GrantedBy,
		formatTime(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

// GetGrant retrieves the grant for (document, grantee).
// Returns store.ErrNotFound if no grant exists.
func (s *Store) GetGrant(ctx context.Context, documentID, granteeID string) (*domain.PermissionGrant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+` FROM permission_grants
		WHERE document_id = ? AND grantee_id = ?`,
		documentID, granteeID)

	g, err := scanGrant(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGrantsForDocument returns all grants on a document, newest first.
func (s *Store) ListGrantsForDocument(ctx context.Context, documentID string) ([]*domain.PermissionGrant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+grantColumns+` FROM permission_grants
		WHERE document_id = ?
		ORDER BY created_at DESC, grantee_id ASC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	var grants []*domain.PermissionGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if grants == nil {
		grants = []*domain.PermissionGrant{}
	}

	return grants, nil
}

// DeleteGrant removes the grant for (document, grantee).
// Returns store.ErrNotFound if no grant exists.
func (s *Store) DeleteGrant(ctx context.Context, documentID, granteeID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM permission_grants WHERE document_id = ? AND grantee_id = ?`,
		documentID, granteeID)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
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
