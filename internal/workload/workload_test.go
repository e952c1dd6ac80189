package workload

import (
	"context"
	"testing"
	"time"

	"github.com/amakane-hakari/tcache/internal/cache"
)

func TestGenerator_Ratios(t *testing.T) {
	g := NewGenerator(100, 0.6, 0.1, 8, 1)
	counts := map[Op]int{}
	for range 10_000 {
		op, key, value := g.Next()
		if key >= 100 {
			t.Fatalf("key %d outside key space", key)
		}
		if op == OpPut && len(value) != 8 {
			t.Fatalf("put value length %d", len(value))
		}
		if op != OpPut && value != nil {
			t.Fatalf("%s should carry no value", op)
		}
		counts[op]++
	}
	if counts[OpGet] < 5500 || counts[OpGet] > 6500 {
		t.Fatalf("unexpected get count %d", counts[OpGet])
	}
	if counts[OpRemove] < 700 || counts[OpRemove] > 1300 {
		t.Fatalf("unexpected remove count %d", counts[OpRemove])
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(1000, 0.5, 0.1, 4, 42)
	b := NewGenerator(1000, 0.5, 0.1, 4, 42)
	for range 100 {
		opA, keyA, valA := a.Next()
		opB, keyB, valB := b.Next()
		if opA != opB || keyA != keyB || string(valA) != string(valB) {
			t.Fatalf("same seed should give same sequence")
		}
	}
}

func TestRunner_MaxOps(t *testing.T) {
	c := cache.NewLocked(50, cache.WithInvariantChecks())
	var now cache.Time
	r := &Runner{
		MaxOps: 2000,
		Name:   "test",
		Clock: func() cache.Time {
			now++
			return now
		},
	}
	s, err := r.Run(context.Background(), NewGenerator(200, 0.5, 0.1, 16, 7), c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Ops != 2000 {
		t.Fatalf("expected 2000 ops, got %d", s.Ops)
	}
	total := 0
	for _, n := range s.Outcomes {
		total += n
	}
	if total != 2000 {
		t.Fatalf("outcomes should add up to 2000, got %v", s.Outcomes)
	}
	if c.Len() > 50 {
		t.Fatalf("cache exceeded capacity: %d", c.Len())
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	c := cache.NewLocked(10)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := &Runner{Rate: 1000, Name: "cancel"}
	begin := time.Now()
	s, err := r.Run(ctx, NewGenerator(20, 0.5, 0, 4, 1), c)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if time.Since(begin) > 2*time.Second {
		t.Fatalf("runner did not stop promptly")
	}
	if s == nil || s.Ops == 0 {
		t.Fatalf("expected some operations before cancel")
	}
}
