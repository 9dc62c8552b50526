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

func TestSearch_RejectsContradictoryCriteria(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.search.Search(ctx, domain.SearchCriteria{MatchAll: true}, "user_1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCriteria)

	_, err = env.search.Search(ctx, domain.SearchCriteria{Visibility: domain.VisibilityPrivate}, "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCriteria)

	after := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = env.search.Search(ctx, domain.SearchCriteria{CreatedAfter: &after, CreatedBefore: &before}, "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCriteria)
}

func TestSearch_ScopesByRequester(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createDoc(t, "user_1", "public report", true)
	env.createDoc(t, "user_1", "private report", false)

	anon, err := env.search.Search(ctx, domain.SearchCriteria{Keyword: "report"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), anon.Total)

	owner, err := env.search.Search(ctx, domain.SearchCriteria{Keyword: "report"}, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), owner.Total)
}

func TestSearchWithFacets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createDoc(t, "user_1", "faceted", true)

	result, facets, err := env.search.SearchWithFacets(ctx, domain.SearchCriteria{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.NotNil(t, facets)
	require.Len(t, facets.ByType, 1)
	assert.Equal(t, "document", facets.ByType[0].Label)
}

func TestFacets_TopNFromConstructor(t *testing.T) {
	env := newTestEnv(t)

	// Constructor clamps a nonsensical topN to the default.
	svc := NewSearchService(env.store, false, -1, env.search.logger)
	assert.Equal(t, 10, svc.facetTopN)
}
