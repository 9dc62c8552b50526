package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiryPolicyResolve(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, ExpiryNever.Resolve(now))

	day := ExpiryOneDay.Resolve(now)
	require.NotNil(t, day)
	assert.Equal(t, now.Add(24*time.Hour), *day)

	week := ExpiryWeek.Resolve(now)
	require.NotNil(t, week)
	assert.Equal(t, now.Add(7*24*time.Hour), *week)

	month := ExpiryMonth.Resolve(now)
	require.NotNil(t, month)
	assert.Equal(t, now.Add(30*24*time.Hour), *month)
}

func TestParseExpiryPolicy(t *testing.T) {
	policy, ok := ParseExpiryPolicy("7d")
	assert.True(t, ok)
	assert.Equal(t, ExpiryWeek, policy)

	_, ok = ParseExpiryPolicy("90d")
	assert.False(t, ok)
}

func TestShareLinkIsExpired(t *testing.T) {
	now := time.Now()

	unlimited := &ShareLink{}
	assert.False(t, unlimited.IsExpired(now))

	past := now.Add(-time.Minute)
	expired := &ShareLink{ExpiresAt: &past}
	assert.True(t, expired.IsExpired(now))

	future := now.Add(time.Minute)
	live := &ShareLink{ExpiresAt: &future}
	assert.False(t, live.IsExpired(now))
}

func TestShareLinkIsExhausted(t *testing.T) {
	unlimited := &ShareLink{DownloadCount: 1000}
	assert.False(t, unlimited.IsExhausted())

	limit := int64(3)
	open := &ShareLink{DownloadLimit: &limit, DownloadCount: 2}
	assert.False(t, open.IsExhausted())

	spent := &ShareLink{DownloadLimit: &limit, DownloadCount: 3}
	assert.True(t, spent.IsExhausted())
}
