package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/domain"
	"github.com/docvaultapp/docvault-server/internal/store/sqlite"
)

type testEnv struct {
	store     *sqlite.Store
	access    *AccessService
	documents *DocumentService
	tags      *TagService
	search    *SearchService
	share     *ShareService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	access := NewAccessService(s, logger)
	return &testEnv{
		store:     s,
		access:    access,
		documents: NewDocumentService(s, access, logger),
		tags:      NewTagService(s, access, logger),
		search:    NewSearchService(s, false, 10, logger),
		share:     NewShareService(s, access, logger),
	}
}

func (e *testEnv) createDoc(t *testing.T, ownerID, title string, public bool) *domain.Document {
	t.Helper()

	doc, err := e.documents.CreateDocument(context.Background(), ownerID, CreateDocumentParams{
		Title:       title,
		FileName:    title + ".pdf",
		StoragePath: "/vault/" + title,
		Size:        2048,
		ContentType: "application/pdf",
		ContentHash: "hash-" + title,
		IsPublic:    public,
	})
	require.NoError(t, err)
	return doc
}

func (e *testEnv) grant(t *testing.T, documentID, ownerID, granteeID string, level domain.GrantLevel) {
	t.Helper()

	_, err := e.documents.GrantAccess(context.Background(), documentID, ownerID, granteeID, level)
	require.NoError(t, err)
}
