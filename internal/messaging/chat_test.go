package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFindsMember(t *testing.T) {
	assert.True(t, contains([]string{"ws-1", "ws-2"}, "ws-2"))
}

func TestContainsReportsAbsence(t *testing.T) {
	assert.False(t, contains([]string{"ws-1", "ws-2"}, "ws-3"))
}

func TestContainsEmptySlice(t *testing.T) {
	assert.False(t, contains(nil, "ws-1"))
}
