package lockmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutualExclusion(t *testing.T) {
	lm := MkLockMap()
	var counters [4]uint64

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := uint64(i % 4)
			for j := 0; j < 1000; j++ {
				lm.Acquire(a)
				counters[a]++
				lm.Release(a)
			}
		}(i)
	}
	wg.Wait()

	for a, c := range counters {
		assert.Equal(t, uint64(10000), c, "address %d lost increments", a)
	}
}

func TestSameShardDifferentAddr(t *testing.T) {
	lm := MkLockMap()
	// 0 and nShard collide on a shard but are distinct locks.
	lm.Acquire(0)
	done := make(chan struct{})
	go func() {
		lm.Acquire(nShard)
		lm.Release(nShard)
		close(done)
	}()
	<-done
	lm.Release(0)
}
