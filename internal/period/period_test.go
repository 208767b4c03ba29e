package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates that "today" anchors to 00:00 UTC-3 of the current
// civil day and leaves the upper bound open.
func TestPeriod_Resolve_Today(t *testing.T) {
	// 2024-03-15 14:30 UTC is 11:30 at UTC-3, still the civil day of the 15th.
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	r := Resolve(TokenToday, "", "", now)

	require.NotNil(t, r.From)
	// 00:00 UTC-3 on the 15th == 03:00 UTC on the 15th
	assert.Equal(t, time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC), r.From.UTC())
	assert.Nil(t, r.To)
}

// TestPurpose: Validates the civil-day boundary: shortly after UTC midnight it
// is still the previous day at UTC-3.
func TestPeriod_Resolve_Today_BeforeLocalMidnight(t *testing.T) {
	// 01:00 UTC on the 16th is 22:00 on the 15th at UTC-3.
	now := time.Date(2024, 3, 16, 1, 0, 0, 0, time.UTC)

	r := Resolve(TokenToday, "", "", now)

	require.NotNil(t, r.From)
	assert.Equal(t, time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC), r.From.UTC())
}

// TestPurpose: Validates that yesterday's To equals today's From and that From
// is exactly one civil day earlier.
func TestPeriod_Resolve_Yesterday(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	yesterday := Resolve(TokenYesterday, "", "", now)
	today := Resolve(TokenToday, "", "", now)

	require.NotNil(t, yesterday.From)
	require.NotNil(t, yesterday.To)
	require.NotNil(t, today.From)
	assert.True(t, yesterday.To.Equal(*today.From))
	assert.True(t, yesterday.From.Equal(today.From.AddDate(0, 0, -1)))
}

// TestPurpose: Validates the inclusive upper day of a custom range: dateTo
// 2024-01-12 yields a To at UTC-3 midnight of the 13th.
func TestPeriod_Resolve_Custom_InclusiveUpperDay(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	r := Resolve(TokenCustom, "2024-01-10", "2024-01-12", now)

	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC), r.From.UTC())
	assert.Equal(t, time.Date(2024, 1, 13, 3, 0, 0, 0, time.UTC), r.To.UTC())

	// The whole of the 12th (UTC-3) is inside the range.
	assert.True(t, r.Contains(time.Date(2024, 1, 13, 2, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 1, 13, 3, 0, 0, 0, time.UTC)))
}

// TestPurpose: Validates one-sided custom ranges when only one bound is set.
func TestPeriod_Resolve_Custom_OneSided(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	onlyFrom := Resolve(TokenCustom, "2024-01-10", "", now)
	require.NotNil(t, onlyFrom.From)
	assert.Nil(t, onlyFrom.To)

	onlyTo := Resolve(TokenCustom, "", "2024-01-12", now)
	assert.Nil(t, onlyTo.From)
	require.NotNil(t, onlyTo.To)
}

// TestPurpose: Validates that malformed custom bounds are treated as absent.
func TestPeriod_Resolve_Custom_MalformedBound(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	r := Resolve(TokenCustom, "not-a-date", "2024-01-12", now)

	assert.Nil(t, r.From)
	require.NotNil(t, r.To)
}

// TestPurpose: Validates that unknown or empty tokens fall back to "today".
func TestPeriod_Resolve_UnknownTokenFallsBackToToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	today := Resolve(TokenToday, "", "", now)

	for _, token := range []string{"", "fortnight", "CUSTOM"} {
		r := Resolve(token, "", "", now)
		require.NotNil(t, r.From, "token %q", token)
		assert.True(t, r.From.Equal(*today.From), "token %q", token)
		assert.Nil(t, r.To, "token %q", token)
	}
}

// TestPurpose: Validates the 7d window covers seven civil days including the
// current one.
func TestPeriod_Resolve_SevenDays(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	r := Resolve(Token7D, "", "", now)

	require.NotNil(t, r.From)
	assert.Equal(t, time.Date(2024, 3, 9, 3, 0, 0, 0, time.UTC), r.From.UTC())
	assert.Nil(t, r.To)
}

// TestPurpose: Validates RFC3339 query encoding and omission of open bounds.
func TestPeriod_Range_Query(t *testing.T) {
	from := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 16, 3, 0, 0, 0, time.UTC)

	q := Range{From: &from, To: &to}.Query()
	assert.Equal(t, "2024-03-15T03:00:00Z", q.Get("from"))
	assert.Equal(t, "2024-03-16T03:00:00Z", q.Get("to"))

	open := Range{From: &from}.Query()
	assert.Equal(t, "", open.Get("to"))
	_, hasTo := open["to"]
	assert.False(t, hasTo)
}
