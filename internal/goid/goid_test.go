package goid

import (
	"sync"
	"testing"
)

func TestCurrentStable(t *testing.T) {
	a, b := Current(), Current()
	if a == 0 {
		t.Fatal("Current returned 0")
	}
	if a != b {
		t.Errorf("Current changed within one goroutine: %d then %d", a, b)
	}
}

func TestCurrentDistinct(t *testing.T) {
	const n = 16
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = Current()
		}()
	}
	wg.Wait()

	seen := make(map[uint64]bool, n+1)
	seen[Current()] = true
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate goroutine id %d", id)
		}
		seen[id] = true
	}
}
