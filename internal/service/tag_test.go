package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/domain"
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
)

func TestCreateTag_TrimsAndRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, "user_1", CreateTagParams{Name: "  finance  "})
	require.NoError(t, err)
	assert.Equal(t, "finance", tag.Name)

	_, err = env.tags.CreateTag(ctx, "user_2", CreateTagParams{Name: "finance"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	_, err = env.tags.CreateTag(ctx, "user_1", CreateTagParams{Name: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCriteria)
}

func TestUpdateTag_CreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, "user_1", CreateTagParams{Name: "finance"})
	require.NoError(t, err)

	name := "money"
	_, err = env.tags.UpdateTag(ctx, tag.ID, "user_2", UpdateTagParams{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	updated, err := env.tags.UpdateTag(ctx, tag.ID, "user_1", UpdateTagParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "money", updated.Name)
}

func TestAttachTags_RequiresWriteCapability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "tagged", true)
	tag, err := env.tags.CreateTag(ctx, "user_1", CreateTagParams{Name: "finance"})
	require.NoError(t, err)

	// Public documents are readable by anyone, but tagging needs write.
	_, err = env.tags.AttachTags(ctx, doc.ID, "user_2", []string{tag.ID})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	added, err := env.tags.AttachTags(ctx, doc.ID, "user_1", []string{tag.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	tags, err := env.tags.TagsForDocument(ctx, doc.ID, "user_2")
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestReplaceTags_ThroughService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "retagged", false)

	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		tag, err := env.tags.CreateTag(ctx, "user_1", CreateTagParams{Name: name})
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}

	_, err := env.tags.AttachTags(ctx, doc.ID, "user_1", ids[:3])
	require.NoError(t, err)

	change, err := env.tags.ReplaceTags(ctx, doc.ID, "user_1", ids[1:])
	require.NoError(t, err)
	assert.Equal(t, 1, change.Added)
	assert.Equal(t, 1, change.Removed)
}

func TestDeleteTag_CreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, "user_1", CreateTagParams{Name: "ephemeral"})
	require.NoError(t, err)

	err = env.tags.DeleteTag(ctx, tag.ID, "user_2")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.tags.DeleteTag(ctx, tag.ID, "user_1"))
}

func TestAccessService_Evaluate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := env.createDoc(t, "user_1", "graded", false)
	env.grant(t, doc.ID, "user_1", "user_2", domain.LevelWrite)

	decision, err := env.access.Evaluate(ctx, doc, "user_2")
	require.NoError(t, err)
	assert.True(t, decision.CanRead)
	assert.True(t, decision.CanWrite)
	assert.False(t, decision.CanAdmin)

	decision, err = env.access.Evaluate(ctx, doc, "user_3")
	require.NoError(t, err)
	assert.False(t, decision.CanRead)
}
