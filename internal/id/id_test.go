package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBridgeID(t *testing.T) {
	tests := []struct {
		kind, eventID, recordID string
		want                    string
	}{
		{"revenue", "ev-12", "r-3", "drv:revenue:ev-12:r-3"},
		{"extra-cost", "EV 12", "Fee #1", "drv:extra-cost:ev-12:fee-1"},
		{"revenue", "weekly market", "2025-03-01", "drv:revenue:weekly-market:2025-03-01"},
	}
	for _, tt := range tests {
		got := FormatBridgeID(tt.kind, tt.eventID, tt.recordID)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatBridgeID_Stable(t *testing.T) {
	a := FormatBridgeID("revenue", "Käse Markt", "day 1")
	b := FormatBridgeID("revenue", "Käse Markt", "day 1")
	assert.Equal(t, a, b)
	assert.True(t, IsBridgeID(a))
}

func TestParseBridgeID(t *testing.T) {
	kind, eventID, recordID, err := ParseBridgeID("drv:revenue:ev-12:r-3")
	require.NoError(t, err)
	assert.Equal(t, "revenue", kind)
	assert.Equal(t, "ev-12", eventID)
	assert.Equal(t, "r-3", recordID)
}

func TestParseBridgeID_Invalid(t *testing.T) {
	for _, input := range []string{"", "drv:revenue", "abc:revenue:ev:r", "plain-id"} {
		_, _, _, err := ParseBridgeID(input)
		assert.Error(t, err, input)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Simple", "simple"},
		{"  padded  ", "padded"},
		{"Fee #1 (cash)", "fee-1-cash"},
		{"a___b", "a___b"},
		{"trailing!!", "trailing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.input))
	}
}

func TestNew_Unique(t *testing.T) {
	assert.NotEqual(t, New(), New())
}
