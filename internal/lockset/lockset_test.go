package lockset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_SameIdentitySameLock(t *testing.T) {
	s := New()
	a := s.For("mem://x/key_cache")
	b := s.For("mem://x/key_cache")
	c := s.For("mem://y/key_cache")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())
}

func TestSet_ConcurrentFor(t *testing.T) {
	s := New()
	got := make([]*sync.RWMutex, 50)

	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.For("shared")
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.Equal(t, 1, s.Len())
}
