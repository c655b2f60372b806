package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2024, Month: time.March, Day: 1}
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d.AddDays(-1))
	assert.Equal(t, Date{Year: 2025, Month: time.January, Day: 1}, Date{Year: 2024, Month: time.December, Day: 31}.AddDays(1))
	assert.Equal(t, "2024-03-01", d.String())
}

func TestTodayUsesLocation(t *testing.T) {
	now := time.Date(2026, time.October, 16, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, Date{Year: 2026, Month: time.October, Day: 16}, Today(now, time.UTC))
	assert.Equal(t, Date{Year: 2026, Month: time.October, Day: 17}, Today(now, time.FixedZone("UTC+3", 3*3600)))
	assert.Equal(t, Date{Year: 2026, Month: time.October, Day: 16}, Today(now, nil))
}

func TestDateScan(t *testing.T) {
	want := Date{Year: 2026, Month: time.October, Day: 16}

	for _, src := range []interface{}{
		"2026-10-16",
		[]byte("2026-10-16"),
		"2026-10-16T00:00:00Z",
		time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC),
	} {
		var got Date
		require.NoError(t, got.Scan(src), "%T", src)
		assert.Equal(t, want, got)
	}

	var d Date
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := Date{Year: 2026, Month: time.January, Day: 5}.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	raw, err := json.Marshal(payload{Date: Date{Year: 2026, Month: time.October, Day: 6}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-10-06"}`, string(raw))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-12-31"}`), &p))
	assert.Equal(t, Date{Year: 2025, Month: time.December, Day: 31}, p.Date)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"31/12/2025"}`), &p))
}

func TestActivityStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, ActivityStatus("done").Valid())
	assert.False(t, ActivityStatus("").Valid())
}
