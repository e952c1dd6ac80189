package cache

import (
	"sync"
	"testing"
)

func TestLocked_Concurrency(t *testing.T) {
	l := NewLocked(64, WithInvariantChecks())
	const workers = 8
	var wg sync.WaitGroup
	var clock sync.Mutex
	var now Time
	tick := func() Time {
		clock.Lock()
		defer clock.Unlock()
		now++
		return now
	}

	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range 500 {
				k := uint64(w*1000 + i%100)
				l.Put(k, tick(), []byte("v"))
				l.Get(k, tick)
				if i%3 == 0 {
					l.Remove(k)
				}
				_ = l.Exists(k)
			}
		}(w)
	}
	wg.Wait()

	if n := l.Len(); n > l.Cap() {
		t.Fatalf("len %d exceeds capacity %d", n, l.Cap())
	}
	l.Do(func(c *Cache) {
		if err := c.Check(); err != nil {
			t.Fatalf("inconsistent after concurrent use: %v", err)
		}
	})
	l.Clear()
	if s := l.Stats(); s.Len != 0 {
		t.Fatalf("expected empty after clear, got %+v", s)
	}
}
