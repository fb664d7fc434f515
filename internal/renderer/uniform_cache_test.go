package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func countingLookup(known map[string]int32) (func(string) int32, *int) {
	calls := 0
	return func(name string) int32 {
		calls++
		if loc, ok := known[name]; ok {
			return loc
		}
		return -1
	}, &calls
}

func TestUniformCacheLooksUpOnce(t *testing.T) {
	lookup, calls := countingLookup(map[string]int32{"model": 3})
	cache := newUniformCache(lookup)

	assert.Equal(t, int32(3), cache.GetLocation("model"))
	assert.Equal(t, int32(3), cache.GetLocation("model"))
	assert.Equal(t, 1, *calls)
}

func TestUniformCacheRemembersMissing(t *testing.T) {
	lookup, calls := countingLookup(nil)
	cache := newUniformCache(lookup)

	assert.Equal(t, int32(-1), cache.GetLocation("unused"))
	// setters skip missing uniforms without reaching GL
	cache.SetFloat("unused", 1)
	cache.SetVec3("unused", [3]float32{})
	assert.Equal(t, 1, *calls)
}

func TestUniformCacheClear(t *testing.T) {
	lookup, calls := countingLookup(map[string]int32{"shininess": 7})
	cache := newUniformCache(lookup)
	cache.GetLocation("shininess")

	cache.Clear()

	assert.Empty(t, cache.locations)
	cache.GetLocation("shininess")
	assert.Equal(t, 2, *calls)
}
