package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchCriteriaNormalize(t *testing.T) {
	c := SearchCriteria{Keyword: "  budget  "}
	c.Normalize()
	assert.Equal(t, "budget", c.Keyword)
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, DefaultPageSize, c.PageSize)
	assert.Equal(t, SortRelevance, c.SortKey)
	assert.Equal(t, SortDesc, c.SortDir)
}

func TestSearchCriteriaNormalize_ClampsPageSize(t *testing.T) {
	c := SearchCriteria{Page: -3, PageSize: 5000}
	c.Normalize()
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, MaxPageSize, c.PageSize)
}

func TestSearchCriteriaOffset(t *testing.T) {
	c := SearchCriteria{Page: 3, PageSize: 20}
	assert.Equal(t, 40, c.Offset())
}

func TestParseTypeCategory(t *testing.T) {
	cat, ok := ParseTypeCategory("spreadsheet")
	assert.True(t, ok)
	assert.Equal(t, TypeSpreadsheet, cat)

	_, ok = ParseTypeCategory("archive")
	assert.False(t, ok)

	cat, ok = ParseTypeCategory("")
	assert.True(t, ok)
	assert.Equal(t, TypeNone, cat)
}

func TestParseSortKey(t *testing.T) {
	key, ok := ParseSortKey("download_count")
	assert.True(t, ok)
	assert.Equal(t, SortDownloadCount, key)

	_, ok = ParseSortKey("title")
	assert.False(t, ok)
}

func TestMimeRules(t *testing.T) {
	prefixes, substrings := TypeImage.MimeRules()
	assert.Equal(t, []string{"image/"}, prefixes)
	assert.Empty(t, substrings)

	_, substrings = TypeSpreadsheet.MimeRules()
	assert.Contains(t, substrings, "csv")

	prefixes, _ = TypeNone.MimeRules()
	assert.Empty(t, prefixes)
}
