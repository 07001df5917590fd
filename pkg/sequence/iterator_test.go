package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIteratorChain(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6})
	even := it.Filter(func(v int) bool { return v%2 == 0 })

	assert.Equal(t, []int{2, 4, 6}, even.Collect())
	assert.Equal(t, 3, even.Count())
	assert.Equal(t, []int{2, 4}, even.Take(2).Collect())
	assert.Empty(t, even.Take(0).Collect())

	v, ok := it.Find(func(v int) bool { return v > 4 })
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.False(t, it.Any(func(v int) bool { return v > 6 }))
}

func TestIteratorStopsEarly(t *testing.T) {
	visited := 0
	it := From([]int{1, 2, 3, 4}).Filter(func(int) bool {
		visited++
		return true
	})
	for v := range it.Seq() {
		if v == 2 {
			break
		}
	}
	assert.Equal(t, 2, visited)
}

func TestGroupBy(t *testing.T) {
	groups := GroupBy(From([]string{"orc", "ogre", "bat"}), func(s string) byte { return s[0] })
	assert.Equal(t, []string{"orc", "ogre"}, groups['o'])
	assert.Equal(t, []string{"bat"}, groups['b'])
}
