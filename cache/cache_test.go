package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestQueryCache tests basic put/get behavior
func TestQueryCache(t *testing.T) {
	c := NewQueryCache()

	_, found := c.Get("students:S1:page1")
	assert.False(t, found)

	c.Put("students:S1:page1", []string{"a", "b"})

	value, found := c.Get("students:S1:page1")
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, value)
	assert.Equal(t, 1, c.Len())
}

// TestInvalidateAll tests that no entry survives a full invalidation
func TestInvalidateAll(t *testing.T) {
	c := NewQueryCache()
	c.Put("students:S1:page1", 1)
	c.Put("courses:S1", 2)
	c.Put("parking:S1:lots", 3)

	c.InvalidateAll()

	assert.Equal(t, 0, c.Len())
	_, found := c.Get("students:S1:page1")
	assert.False(t, found)
}

// TestInvalidatePrefix tests that only matching keys are dropped
func TestInvalidatePrefix(t *testing.T) {
	c := NewQueryCache()
	c.Put("students:S1:page1", 1)
	c.Put("students:S1:page2", 2)
	c.Put("courses:S1", 3)

	c.InvalidatePrefix("students:")

	_, found := c.Get("students:S1:page1")
	assert.False(t, found)
	_, found = c.Get("students:S1:page2")
	assert.False(t, found)

	value, found := c.Get("courses:S1")
	assert.True(t, found)
	assert.Equal(t, 3, value)
}
