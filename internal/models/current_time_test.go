package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCurrentTimeData(t *testing.T) {
	testCases := []struct {
		name     string
		testTime time.Time
	}{
		{name: "UTC Time", testTime: time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC)},
		{name: "Local Time", testTime: time.Date(2025, 5, 3, 12, 0, 0, 0, time.Local)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := NewCurrentTimeData(tc.testTime)

			assert.Equal(t, tc.testTime.UnixNano()/int64(time.Millisecond), result.Entry.Time)
			assert.Equal(t, tc.testTime.Format(time.RFC3339), result.Entry.ReadableTime)
			assert.NotNil(t, result.References.Stations)
			assert.Empty(t, result.References.Stations)
		})
	}
}
