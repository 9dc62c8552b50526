package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/store"
)

func TestCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := testTag("tag_1", "finance", "user_1")
	tag.Color = "#ff0000"
	tag.Description = "money things"
	mustCreateTag(t, s, tag)

	retrieved, err := s.GetTagByID(ctx, "tag_1")
	require.NoError(t, err)
	assert.Equal(t, "finance", retrieved.Name)
	assert.Equal(t, "#ff0000", retrieved.Color)
	assert.Equal(t, int64(0), retrieved.UsageCount)
}

func TestCreateTag_DuplicateName(t *testing.T) {
	s := newTestStore(t)

	mustCreateTag(t, s, testTag("tag_1", "finance", "user_1"))

	err := s.CreateTag(context.Background(), testTag("tag_2", "finance", "user_2"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateTag_NamesAreCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_1", "Finance", "user_1"))
	mustCreateTag(t, s, testTag("tag_2", "finance", "user_1"))

	upper, err := s.GetTagByName(ctx, "Finance")
	require.NoError(t, err)
	assert.Equal(t, "tag_1", upper.ID)

	lower, err := s.GetTagByName(ctx, "finance")
	require.NoError(t, err)
	assert.Equal(t, "tag_2", lower.ID)
}

func TestListTags_OrderedByUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateTag(t, s, testTag("tag_b", "beta", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "One"), "tag_b")
	mustCreateDoc(t, s, testDoc("doc_2", "user_1", "Two"), "tag_b")
	mustCreateDoc(t, s, testDoc("doc_3", "user_1", "Three"), "tag_a")

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "tag_b", tags[0].ID)
	assert.Equal(t, int64(2), tags[0].UsageCount)
	assert.Equal(t, "tag_a", tags[1].ID)
}

func TestAttachTags_IdempotentAndCounted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateTag(t, s, testTag("tag_b", "beta", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"), "tag_a")

	// tag_a is already attached, tag_b is new.
	added, err := s.AttachTags(ctx, "doc_1", []string{"tag_a", "tag_b"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	tagA, err := s.GetTagByID(ctx, "tag_a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tagA.UsageCount)
}

func TestAttachTags_UnknownTagSkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"))

	added, err := s.AttachTags(ctx, "doc_1", []string{"tag_a", "tag_missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	byDoc, err := s.TagsForDocuments(ctx, []string{"doc_1"})
	require.NoError(t, err)
	require.Len(t, byDoc["doc_1"], 1)
	assert.Equal(t, "tag_a", byDoc["doc_1"][0].ID)
}

func TestDetachTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateTag(t, s, testTag("tag_b", "beta", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"), "tag_a", "tag_b")

	// tag_b attached, tag_missing never was.
	removed, err := s.DetachTags(ctx, "doc_1", []string{"tag_b", "tag_missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	tagB, err := s.GetTagByID(ctx, "tag_b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), tagB.UsageCount)
}

func TestReplaceTags_TouchesOnlyDifference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C", "D"} {
		mustCreateTag(t, s, testTag("tag_"+id, "name_"+id, "user_1"))
	}
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"), "tag_A", "tag_B", "tag_C")

	// {A,B,C} -> {B,C,D}: exactly one removal and one insertion.
	change, err := s.ReplaceTags(ctx, "doc_1", []string{"tag_B", "tag_C", "tag_D"})
	require.NoError(t, err)
	assert.Equal(t, 1, change.Added)
	assert.Equal(t, 1, change.Removed)

	byDoc, err := s.TagsForDocuments(ctx, []string{"doc_1"})
	require.NoError(t, err)
	ids := make([]string, 0, 3)
	for _, tag := range byDoc["doc_1"] {
		ids = append(ids, tag.ID)
	}
	assert.ElementsMatch(t, []string{"tag_B", "tag_C", "tag_D"}, ids)

	tagA, err := s.GetTagByID(ctx, "tag_A")
	require.NoError(t, err)
	assert.Equal(t, int64(0), tagA.UsageCount)
	tagD, err := s.GetTagByID(ctx, "tag_D")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tagD.UsageCount)
}

func TestReplaceTags_EmptySetClearsAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"), "tag_a")

	change, err := s.ReplaceTags(ctx, "doc_1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, change.Added)
	assert.Equal(t, 1, change.Removed)

	byDoc, err := s.TagsForDocuments(ctx, []string{"doc_1"})
	require.NoError(t, err)
	assert.Empty(t, byDoc["doc_1"])
}

func TestDeleteTag_RemovesAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"), "tag_a")

	require.NoError(t, s.DeleteTag(ctx, "tag_a"))

	_, err := s.GetTagByID(ctx, "tag_a")
	assert.ErrorIs(t, err, store.ErrNotFound)

	byDoc, err := s.TagsForDocuments(ctx, []string{"doc_1"})
	require.NoError(t, err)
	assert.Empty(t, byDoc["doc_1"])
}

func TestTagsForDocuments_AllKeysPresent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Tagged"), "tag_a")
	mustCreateDoc(t, s, testDoc("doc_2", "user_1", "Bare"))

	byDoc, err := s.TagsForDocuments(ctx, []string{"doc_1", "doc_2", "doc_unknown"})
	require.NoError(t, err)

	// Every requested ID has an entry, even with no tags.
	require.Contains(t, byDoc, "doc_1")
	require.Contains(t, byDoc, "doc_2")
	require.Contains(t, byDoc, "doc_unknown")
	assert.Len(t, byDoc["doc_1"], 1)
	assert.Empty(t, byDoc["doc_2"])
	assert.Empty(t, byDoc["doc_unknown"])
}

func TestResyncTagCounts_FixesDrift(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateTag(t, s, testTag("tag_b", "beta", "user_1"))
	mustCreateDoc(t, s, testDoc("doc_1", "user_1", "Doc"), "tag_a")

	// Corrupt the stored counter to simulate drift.
	_, err := s.db.ExecContext(ctx, `UPDATE tags SET usage_count = 99 WHERE id = 'tag_a'`)
	require.NoError(t, err)

	corrected, err := s.ResyncTagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	tagA, err := s.GetTagByID(ctx, "tag_a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tagA.UsageCount)

	// A second pass finds nothing to fix.
	corrected, err = s.ResyncTagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)
}
