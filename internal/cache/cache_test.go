package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speechmeme/internal/core"
)

func TestIsValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	maxAge := 2 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "fresh", age: 0, want: true},
		{name: "one hour", age: time.Hour, want: true},
		{name: "just under", age: maxAge - time.Nanosecond, want: true},
		{name: "exactly max age is expired", age: maxAge, want: false},
		{name: "three hours", age: 3 * time.Hour, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &Snapshot{Timestamp: now.Add(-tt.age)}
			assert.Equal(t, tt.want, IsValid(snapshot, maxAge, now))
		})
	}

	assert.False(t, IsValid(nil, maxAge, now))
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("RFC3339", func(t *testing.T) {
		s, err := decodeSnapshot([]byte(`{"timestamp":"2025-06-01T12:00:00+02:00","data":[{"display_name":"a","image_url":"https://img/a.gif"}]}`))
		require.NoError(t, err)
		assert.True(t, s.Timestamp.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.UTC, s.Timestamp.Location())
		require.Len(t, s.Items, 1)
	})

	t.Run("MissingTimestamp", func(t *testing.T) {
		_, err := decodeSnapshot([]byte(`{"data":[]}`))
		assert.ErrorIs(t, err, ErrMissingTimestamp)
	})

	t.Run("InvalidTimestamp", func(t *testing.T) {
		_, err := decodeSnapshot([]byte(`{"timestamp":"yesterday","data":[]}`))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrMissingTimestamp))
	})

	t.Run("DropsItemsWithoutImage", func(t *testing.T) {
		s, err := decodeSnapshot([]byte(`{"timestamp":"2025-06-01T12:00:00Z","data":[
			{"display_name":"a","image_url":"https://img/a.gif"},
			{"display_name":"b","image_url":""},
			{"display_name":"c","image_url":null},
			{"display_name":"d"},
			{"display_name":"","image_url":"https://img/e.gif"}]}`))
		require.NoError(t, err)
		assert.Equal(t, []core.Item{
			{DisplayName: "a", ImageURL: "https://img/a.gif"},
			{DisplayName: core.DefaultDisplayName, ImageURL: "https://img/e.gif"},
		}, s.Items)
	})

	t.Run("MissingData", func(t *testing.T) {
		s, err := decodeSnapshot([]byte(`{"timestamp":"2025-06-01T12:00:00Z"}`))
		require.NoError(t, err)
		assert.Empty(t, s.Items)
	})

	t.Run("WrongShape", func(t *testing.T) {
		_, err := decodeSnapshot([]byte(`[1,2,3]`))
		require.Error(t, err)
	})
}

func TestEncodeSnapshot(t *testing.T) {
	s := &Snapshot{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
		Items:     []core.Item{{DisplayName: "a", ImageURL: "https://img/a.gif"}},
	}
	raw, err := encodeSnapshot(s, false)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"timestamp":"2025-06-01T10:00:00Z","data":[{"display_name":"a","image_url":"https://img/a.gif"}]}`,
		string(raw))

	raw, err = encodeSnapshot(&Snapshot{Timestamp: s.Timestamp}, false)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}
