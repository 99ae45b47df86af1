package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		d, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 15}, d)
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected yyyy-mm-dd")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-02-30")
		assert.Error(t, err)
	})
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"2024-01-15", "2024-01-15", 1},
		{"2024-01-15", "2024-01-16", 1},
		{"2024-01-15", "2024-01-20", 5},
		{"2024-02-28", "2024-03-01", 2}, // leap year
		{"2023-02-28", "2023-03-01", 1},
		{"2024-12-31", "2025-01-01", 1},
		{"2024-03-09", "2024-03-11", 2}, // US DST change in between
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(MustParse(tt.a), MustParse(tt.b)))
		})
	}
}

func TestEnumerateRange(t *testing.T) {
	t.Run("Inclusive ascending", func(t *testing.T) {
		days := EnumerateRange(MustParse("2024-01-30"), MustParse("2024-02-02"))
		require.Len(t, days, 4)
		assert.Equal(t, "2024-01-30", days[0].String())
		assert.Equal(t, "2024-01-31", days[1].String())
		assert.Equal(t, "2024-02-01", days[2].String())
		assert.Equal(t, "2024-02-02", days[3].String())
	})

	t.Run("Single day", func(t *testing.T) {
		days := EnumerateRange(MustParse("2024-01-30"), MustParse("2024-01-30"))
		assert.Equal(t, []Date{MustParse("2024-01-30")}, days)
	})

	t.Run("End before start", func(t *testing.T) {
		assert.Nil(t, EnumerateRange(MustParse("2024-01-30"), MustParse("2024-01-29")))
	})

	t.Run("Restartable", func(t *testing.T) {
		a := EnumerateRange(MustParse("2024-01-01"), MustParse("2024-01-10"))
		b := EnumerateRange(MustParse("2024-01-01"), MustParse("2024-01-10"))
		assert.Equal(t, a, b)
	})
}

func TestHalfOpen(t *testing.T) {
	days := HalfOpen(MustParse("2024-05-10"), MustParse("2024-05-11"))
	assert.Equal(t, []Date{MustParse("2024-05-10")}, days)
	assert.Nil(t, HalfOpen(MustParse("2024-05-10"), MustParse("2024-05-10")))
}

func TestIsPast(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	now := time.Date(2024, 6, 10, 0, 30, 0, 0, loc)

	assert.True(t, IsPast(MustParse("2024-06-09"), now))
	assert.False(t, IsPast(MustParse("2024-06-10"), now), "today is never past")
	assert.False(t, IsPast(MustParse("2024-06-11"), now))
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-07-04"}`), &payload))
	assert.Equal(t, MustParse("2024-07-04"), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-07-04"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"07/04/2024"}`), &payload))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, MustParse("2024-07-04"), d)

	require.NoError(t, d.Scan([]byte("2024-07-05T00:00:00Z")))
	assert.Equal(t, MustParse("2024-07-05"), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
