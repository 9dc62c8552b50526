package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store"
)

func testGrant(documentID, granteeID string, level domain.GrantLevel) *domain.PermissionGrant {
	return &domain.PermissionGrant{
		DocumentID: documentID,
		GranteeID:  granteeID,
		Level:      level,
		GrantedBy:  "user_1",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestUpsertGrant_CreateAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Shared"))

	require.NoError(t, s.UpsertGrant(ctx, testGrant("doc_1", "user_2", domain.LevelRead)))

	grant, err := s.GetGrant(ctx, "doc_1", "user_2")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelRead, grant.Level)

	// Re-granting upgrades in place rather than duplicating.
	require.NoError(t, s.UpsertGrant(ctx, testGrant("doc_1", "user_2", domain.LevelAdmin)))

	grant, err = s.GetGrant(ctx, "doc_1", "user_2")
	require.NoError(t, err)
	assert.Equal(t, domain.LevelAdmin, grant.Level)

	grants, err := s.ListGrantsForDocument(ctx, "doc_1")
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestGetGrant_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGrant(context.Background(), "doc_1", "user_2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListGrantsForDocument_Empty(t *testing.T) {
	s := newTestStore(t)

	grants, err := s.ListGrantsForDocument(context.Background(), "doc_1")
	require.NoError(t, err)
	assert.NotNil(t, grants)
	assert.Empty(t, grants)
}

func TestDeleteGrant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Shared"))
	require.NoError(t, s.UpsertGrant(ctx, testGrant("doc_1", "user_2", domain.LevelWrite)))

	require.NoError(t, s.DeleteGrant(ctx, "doc_1", "user_2"))

	_, err := s.GetGrant(ctx, "doc_1", "user_2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteGrant(ctx, "doc_1", "user_2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
