package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(dbPath, logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// testDoc builds a valid document owned by ownerID. Mutate the result
// before creating it when a test needs specific fields.
func testDoc(id, ownerID, title string) *domain.Document {
	now := time.Now().UTC()
	return &domain.Document{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		FileName:    title + ".pdf",
		StoragePath: "/vault/" + id,
		Size:        1024,
		ContentType: "application/pdf",
		ContentHash: "hash-" + id,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testTag(id, name, creatorID string) *domain.Tag {
	now := time.Now().UTC()
	return &domain.Tag{
		ID:        id,
		Name:      name,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testShareLink(id, token, documentID string) *domain.ShareLink {
	return &domain.ShareLink{
		ID:         id,
		Token:      token,
		DocumentID: documentID,
		CreatedBy:  "user_1",
		CreatedAt:  time.Now().UTC(),
	}
}

func mustCreateDoc(t *testing.T, s *Store, doc *domain.Document, tagIDs ...string) {
	t.Helper()
	require.NoError(t, s.CreateDocument(context.Background(), doc, tagIDs))
}

func mustCreateTag(t *testing.T, s *Store, tag *domain.Tag) {
	t.Helper()
	require.NoError(t, s.CreateTag(context.Background(), tag))
}
