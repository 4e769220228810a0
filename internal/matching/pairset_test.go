package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairSetDirectionIndependentLookup(t *testing.T) {
	set := NewPairSet([][2]string{{"emp-b", "emp-a"}})

	assert.True(t, set.Contains("emp-a", "emp-b"))
	assert.True(t, set.Contains("emp-b", "emp-a"))
	assert.False(t, set.Contains("emp-a", "emp-c"))
	assert.Equal(t, 1, set.Len())
}

func TestPairSetAddDeduplicatesReversedPairs(t *testing.T) {
	set := NewPairSet(nil)
	set.Add("emp-a", "emp-b")
	set.Add("emp-b", "emp-a")

	assert.Equal(t, 1, set.Len())
}
