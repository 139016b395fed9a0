package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 20)
	assert.True(t, IsValid(id))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewID_Sortable(t *testing.T) {
	first := NewID()
	second := NewID()
	assert.True(t, first < second, "xid ids generated in sequence should sort in order")
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	assert.True(t, strings.HasPrefix(id, "run_"))
	assert.True(t, IsValid(id))
}

func TestNewRequestID(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewRequestID("Section"), "section-"))
	assert.True(t, IsValid(NewRequestID("toc")))
	assert.Len(t, NewRequestID(""), 20)
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("run_not-an-xid"))
	assert.False(t, IsValid("zzzzzzzzzzzzzzzzzzzz!"))
}
