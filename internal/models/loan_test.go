package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"approved", StatusApproved},
		{"APPROVED", StatusApproved},
		{"ApPrOvEd", StatusApproved},
		{"rejected", StatusRejected},
		{"pending", StatusPending},
		{"  approved  ", StatusApproved},
		{"closed", "CLOSED"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStatus(tt.in), "input %q", tt.in)
	}
}

func TestIsDecision(t *testing.T) {
	assert.True(t, IsDecision(StatusApproved))
	assert.True(t, IsDecision(StatusRejected))
	assert.False(t, IsDecision(StatusPending))
	assert.False(t, IsDecision("CLOSED"))
	assert.False(t, IsDecision(""))
	// IsDecision expects normalized input
	assert.False(t, IsDecision("approved"))
}
