package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/domain"
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
)

func TestCreateShareLink_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "shared", false)
	env.grant(t, doc.ID, "user_1", "user_2", domain.LevelWrite)

	_, err := env.share.CreateShareLink(ctx, doc.ID, "user_2", CreateShareLinkParams{})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	link, err := env.share.CreateShareLink(ctx, doc.ID, "user_1", CreateShareLinkParams{Expiry: "7d"})
	require.NoError(t, err)
	assert.Len(t, link.Token, 32)
	require.NotNil(t, link.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *link.ExpiresAt, time.Minute)
}

func TestRedeemShareLink_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.share.RedeemShareLink(context.Background(), "no-such-token", "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRedeemShareLink_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "shared", false)

	past := time.Now().UTC().Add(-time.Hour)
	link := &domain.ShareLink{
		ID:         "shl_expired",
		Token:      "tok_expired_000000000000000001",
		DocumentID: doc.ID,
		CreatedBy:  "user_1",
		ExpiresAt:  &past,
		CreatedAt:  past.Add(-time.Hour),
	}
	require.NoError(t, env.store.CreateShareLink(ctx, link))

	_, err := env.share.RedeemShareLink(ctx, link.Token, "")
	assert.ErrorIs(t, err, domainerrors.ErrLinkExpired)
}

func TestRedeemShareLink_PasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "locked", false)

	link, err := env.share.CreateShareLink(ctx, doc.ID, "user_1", CreateShareLinkParams{Password: "hunter22"})
	require.NoError(t, err)

	_, err = env.share.RedeemShareLink(ctx, link.Token, "")
	assert.ErrorIs(t, err, domainerrors.ErrPasswordRequired)

	_, err = env.share.RedeemShareLink(ctx, link.Token, "wrong")
	assert.ErrorIs(t, err, domainerrors.ErrPasswordMismatch)

	got, err := env.share.RedeemShareLink(ctx, link.Token, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestRedeemShareLink_DownloadLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "limited", false)

	limit := int64(1)
	link, err := env.share.CreateShareLink(ctx, doc.ID, "user_1", CreateShareLinkParams{DownloadLimit: &limit})
	require.NoError(t, err)

	_, err = env.share.RedeemShareLink(ctx, link.Token, "")
	require.NoError(t, err)

	_, err = env.share.RedeemShareLink(ctx, link.Token, "")
	assert.ErrorIs(t, err, domainerrors.ErrLinkExhausted)
}

func TestRedeemShareLink_DocumentDeletedAfterIssue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "withdrawn", false)
	link, err := env.share.CreateShareLink(ctx, doc.ID, "user_1", CreateShareLinkParams{})
	require.NoError(t, err)

	require.NoError(t, env.documents.DeleteDocument(ctx, doc.ID, "user_1"))

	// Deleting the document removed its links; the token resolves to nothing.
	_, err = env.share.RedeemShareLink(ctx, link.Token, "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestInspectShareLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "inspectable", false)
	link, err := env.share.CreateShareLink(ctx, doc.ID, "user_1", CreateShareLinkParams{Password: "pw1234"})
	require.NoError(t, err)

	got, err := env.share.InspectShareLink(ctx, link.Token)
	require.NoError(t, err)
	assert.True(t, got.HasPassword())
	assert.Equal(t, int64(0), got.DownloadCount)
}

func TestRevokeShareLink_CreatorOrAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "revocable", false)
	link, err := env.share.CreateShareLink(ctx, doc.ID, "user_1", CreateShareLinkParams{})
	require.NoError(t, err)

	err = env.share.RevokeShareLink(ctx, link.ID, "user_2")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.share.RevokeShareLink(ctx, link.ID, "user_1"))

	_, err = env.share.RedeemShareLink(ctx, link.Token, "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
