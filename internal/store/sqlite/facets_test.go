package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvaultapp/docvault-server/internal/domain"
)

func facetByLabel(facets []domain.FacetCount, label string) (int64, bool) {
	for _, fc := range facets {
		if fc.Label == label {
			return fc.Count, true
		}
	}
	return 0, false
}

func TestFacetDocuments_TypeBucketsAreDisjoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	types := map[string]string{
		"doc_pdf":  "application/pdf",
		"doc_docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"doc_csv":  "text/csv",
		"doc_txt":  "text/plain",
		"doc_png":  "image/png",
		"doc_bin":  "application/octet-stream",
	}
	for id, ct := range types {
		doc := testDoc(id, "user_1", "Doc "+id)
		doc.ContentType = ct
		doc.IsPublic = true
		mustCreateDoc(t, s, doc)
	}

	facets, err := s.FacetDocuments(ctx, domain.SearchCriteria{}, "", false, 10)
	require.NoError(t, err)

	expect := map[string]int64{
		"document":    2,
		"spreadsheet": 1, // text/csv lands here, not in text
		"text":        1,
		"image":       1,
		"other":       1,
	}
	var sum int64
	for label, want := range expect {
		got, ok := facetByLabel(facets.ByType, label)
		require.True(t, ok, "missing bucket %s", label)
		assert.Equal(t, want, got, "bucket %s", label)
		sum += got
	}

	// Buckets are disjoint, so they sum to the visible total.
	result, err := s.SearchDocuments(ctx, domain.SearchCriteria{}, "", false)
	require.NoError(t, err)
	assert.Equal(t, result.Total, sum)
}

func TestFacetDocuments_RespectsVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pub := testDoc("doc_pub", "user_1", "Public")
	pub.IsPublic = true
	mustCreateDoc(t, s, pub)
	mustCreateDoc(t, s, testDoc("doc_priv", "user_2", "Private"))

	facets, err := s.FacetDocuments(ctx, domain.SearchCriteria{}, "", false, 10)
	require.NoError(t, err)

	count, ok := facetByLabel(facets.ByType, "document")
	require.True(t, ok)
	assert.Equal(t, int64(1), count)

	// The private document's owner never shows up for an anonymous requester.
	_, found := facetByLabel(facets.ByCreator, "user_2")
	assert.False(t, found)
}

func TestFacetDocuments_ByTagCountsAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))
	mustCreateTag(t, s, testTag("tag_b", "beta", "user_1"))
	mustCreateTag(t, s, testTag("tag_c", "gamma", "user_1"))

	for i, tags := range [][]string{
		{"tag_a", "tag_b"},
		{"tag_a"},
		{"tag_a", "tag_c"},
	} {
		doc := testDoc(stringID("doc", i), "user_1", "Doc")
		doc.IsPublic = true
		mustCreateDoc(t, s, doc, tags...)
	}

	facets, err := s.FacetDocuments(ctx, domain.SearchCriteria{}, "", false, 2)
	require.NoError(t, err)

	// Top 2 of 3 tags, ordered by count.
	require.Len(t, facets.ByTag, 2)
	assert.Equal(t, "tag_a", facets.ByTag[0].TagID)
	assert.Equal(t, int64(3), facets.ByTag[0].Count)
}

func TestFacetDocuments_KeywordNarrowsAllDimensions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateTag(t, s, testTag("tag_a", "alpha", "user_1"))

	match := testDoc("doc_match", "user_1", "Annual budget")
	match.IsPublic = true
	mustCreateDoc(t, s, match, "tag_a")

	miss := testDoc("doc_miss", "user_2", "Meeting notes")
	miss.IsPublic = true
	mustCreateDoc(t, s, miss, "tag_a")

	facets, err := s.FacetDocuments(ctx, domain.SearchCriteria{Keyword: "budget"}, "", false, 10)
	require.NoError(t, err)

	require.Len(t, facets.ByTag, 1)
	assert.Equal(t, int64(1), facets.ByTag[0].Count)

	_, foundMissOwner := facetByLabel(facets.ByCreator, "user_2")
	assert.False(t, foundMissOwner)
	matchOwner, ok := facetByLabel(facets.ByCreator, "user_1")
	require.True(t, ok)
	assert.Equal(t, int64(1), matchOwner)
}

func TestFacetDocuments_EmptySet(t *testing.T) {
	s := newTestStore(t)

	facets, err := s.FacetDocuments(context.Background(), domain.SearchCriteria{}, "", false, 10)
	require.NoError(t, err)
	assert.NotNil(t, facets.ByType)
	assert.Empty(t, facets.ByType)
	assert.Empty(t, facets.ByTag)
	assert.Empty(t, facets.ByCreator)
}
