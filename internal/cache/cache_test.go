package cache

import (
	"bytes"
	"errors"
	"testing"
)

func newChecked(capacity int, opts ...Option) *Cache {
	return New(capacity, append(opts, WithInvariantChecks())...)
}

func TestCache_PutGetRemove(t *testing.T) {
	c := newChecked(4)

	if updated := c.Put(1, 10, []byte("foo")); updated {
		t.Fatalf("first put should insert")
	}
	if v, ok := c.GetAt(1, 11); !ok || string(v) != "foo" {
		t.Fatalf("expected foo, got %q (ok=%v)", v, ok)
	}
	if updated := c.Put(1, 12, []byte("longer value")); !updated {
		t.Fatalf("second put should update")
	}
	if v, ok := c.GetAt(1, 13); !ok || string(v) != "longer value" {
		t.Fatalf("expected updated value, got %q", v)
	}
	if _, ok := c.GetAt(2, 14); ok {
		t.Fatalf("expected key 2 to not exist")
	}
	if !c.Remove(1) {
		t.Fatalf("remove should succeed")
	}
	if c.Remove(1) {
		t.Fatalf("second remove should report absence")
	}
	if c.Exists(1) {
		t.Fatalf("removed key should not exist")
	}
	if c.Exists(99) {
		t.Fatalf("never inserted key should not exist")
	}
	if c.Len() != 0 {
		t.Fatalf("expected len=0 got %d", c.Len())
	}
}

func TestCache_ScenarioEvictOldestInsert(t *testing.T) {
	c := newChecked(2)

	if c.Put(1, 5, []byte("A")) {
		t.Fatalf("put 1 should insert")
	}
	if c.Put(2, 6, []byte("B")) {
		t.Fatalf("put 2 should insert")
	}
	if !c.Exists(1) || !c.Exists(2) || c.Len() != 2 {
		t.Fatalf("expected both keys, len=%d", c.Len())
	}
	if c.Put(3, 7, []byte("C")) {
		t.Fatalf("put 3 should insert")
	}
	if c.Exists(1) {
		t.Fatalf("key 1 (oldest) should be evicted")
	}
	if !c.Exists(2) || !c.Exists(3) {
		t.Fatalf("keys 2 and 3 should remain")
	}
	if c.Len() != 2 {
		t.Fatalf("expected len=2 got %d", c.Len())
	}
}

func TestCache_ScenarioTouchProtects(t *testing.T) {
	c := newChecked(2)
	c.Put(1, 10, []byte("X"))
	c.Put(2, 20, []byte("Y"))

	if _, ok := c.GetAt(1, 30); !ok {
		t.Fatalf("expected key 1")
	}
	c.Put(3, 25, []byte("Z"))

	if c.Exists(2) {
		t.Fatalf("key 2 should be evicted after key 1 was touched")
	}
	if !c.Exists(1) || !c.Exists(3) {
		t.Fatalf("keys 1 and 3 should remain")
	}
}

func TestCache_GetEvaluatesTimeOnlyOnHit(t *testing.T) {
	c := newChecked(2)
	calls := 0
	now := func() Time {
		calls++
		return 100
	}

	if _, ok := c.Get(1, now); ok {
		t.Fatalf("expected miss")
	}
	if calls != 0 {
		t.Fatalf("time evaluated on miss")
	}

	c.Put(1, 1, []byte("v"))
	if _, ok := c.Get(1, now); !ok {
		t.Fatalf("expected hit")
	}
	if calls != 1 {
		t.Fatalf("expected one time evaluation, got %d", calls)
	}
	if c.AccessTime(1) != 100 {
		t.Fatalf("expected access time 100, got %d", c.AccessTime(1))
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := newChecked(2)
	in := []byte("abc")
	c.Put(1, 1, in)
	in[0] = 'X'

	v, _ := c.GetAt(1, 2)
	if string(v) != "abc" {
		t.Fatalf("stored value aliased caller memory: %q", v)
	}
	v[0] = 'Y'
	v2, _ := c.GetAt(1, 3)
	if string(v2) != "abc" {
		t.Fatalf("returned value aliased storage: %q", v2)
	}

	out, ok := c.AppendGet([]byte("k="), 1, At(4))
	if !ok || string(out) != "k=abc" {
		t.Fatalf("unexpected AppendGet result %q", out)
	}
}

func TestCache_RemoveMovesLastSlot(t *testing.T) {
	c := newChecked(4)
	for k := uint64(1); k <= 4; k++ {
		c.Put(k, Time(k), []byte{byte(k)})
	}

	// 先頭スロットを消すと末尾の key 4 が移動する
	c.Remove(1)
	for k := uint64(2); k <= 4; k++ {
		v, ok := c.GetAt(k, Time(10+k))
		if !ok || !bytes.Equal(v, []byte{byte(k)}) {
			t.Fatalf("key %d lost or corrupted after swap-delete: %v", k, v)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("expected len=3 got %d", c.Len())
	}
}

func TestCache_ReuseMarkers(t *testing.T) {
	c := newChecked(3)
	c.Put(1, 1, []byte("a"))
	c.Put(2, 2, []byte("b"))
	c.Put(3, 3, []byte("c"))

	c.Remove(1)
	if s := c.Stats(); s.Markers != 1 || s.Len != 2 {
		t.Fatalf("expected 1 marker and len=2, got %+v", s)
	}
	if c.times.Len() != 3 {
		t.Fatalf("time index should hold 2 entries and 1 marker, got %d", c.times.Len())
	}

	// 空いた末尾スロットを再利用するとマーカーは消える
	c.Put(4, 10, []byte("d"))
	if s := c.Stats(); s.Markers != 0 || s.Len != 3 {
		t.Fatalf("expected marker claimed, got %+v", s)
	}

	// 満杯での追加は時刻最小の key 2 を追い出す
	c.Put(5, 11, []byte("e"))
	if c.Exists(2) {
		t.Fatalf("key 2 should be evicted")
	}
	for _, k := range []uint64{3, 4, 5} {
		if !c.Exists(k) {
			t.Fatalf("key %d should remain", k)
		}
	}
}

func TestCache_RemoveDownToEmpty(t *testing.T) {
	c := newChecked(3)
	for k := uint64(1); k <= 3; k++ {
		c.Put(k, Time(k), []byte("x"))
	}
	for _, k := range []uint64{2, 3, 1} {
		if !c.Remove(k) {
			t.Fatalf("remove %d failed", k)
		}
	}
	if s := c.Stats(); s.Len != 0 || s.Markers != 3 {
		t.Fatalf("expected empty cache with 3 markers, got %+v", s)
	}
	for k := uint64(10); k < 16; k++ {
		c.Put(k, Time(k), []byte("y"))
	}
	if s := c.Stats(); s.Len != 3 || s.Markers != 0 {
		t.Fatalf("expected full cache without markers, got %+v", s)
	}
	for k := uint64(13); k < 16; k++ {
		if !c.Exists(k) {
			t.Fatalf("newest key %d should remain", k)
		}
	}
}

func TestCache_Clear(t *testing.T) {
	c := newChecked(4)
	for k := uint64(1); k <= 4; k++ {
		c.Put(k, Time(k), []byte("v"))
	}
	c.Remove(2)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected len=0 got %d", c.Len())
	}
	for k := uint64(1); k <= 4; k++ {
		if c.Exists(k) {
			t.Fatalf("key %d should be cleared", k)
		}
	}
	if c.Stats().Markers != 0 {
		t.Fatalf("clear should drop reuse markers")
	}
	c.Put(7, 1, []byte("again"))
	if v, ok := c.GetAt(7, 2); !ok || string(v) != "again" {
		t.Fatalf("cache unusable after clear")
	}
}

func TestCache_CreateAndAccessTime(t *testing.T) {
	c := newChecked(2, WithCreateTime())
	c.Put(1, 5, []byte("a"))
	c.Put(1, 8, []byte("b"))
	c.GetAt(1, 9)

	if got := c.CreateTime(1); got != 5 {
		t.Fatalf("create time should stay 5, got %d", got)
	}
	if got := c.AccessTime(1); got != 9 {
		t.Fatalf("access time should be 9, got %d", got)
	}
	if c.CreateTime(2) != 0 || c.AccessTime(2) != 0 {
		t.Fatalf("absent key should report 0")
	}

	// 移動後も作成時刻が付いてくる
	c.Put(2, 6, []byte("c"))
	c.Remove(1)
	if got := c.CreateTime(2); got != 6 {
		t.Fatalf("moved key should keep create time 6, got %d", got)
	}
}

func TestCache_CreateTimeRequiresOption(t *testing.T) {
	c := New(1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic without WithCreateTime")
		}
	}()
	c.CreateTime(1)
}

func TestCache_FixedValueSize(t *testing.T) {
	c := newChecked(2, WithFixedValueSize(4))
	c.Put(1, 1, []byte{1, 2, 3, 4})
	c.Put(2, 2, []byte{5, 6, 7, 8})
	c.Put(3, 3, []byte{9, 9, 9, 9})
	if v, ok := c.GetAt(3, 4); !ok || !bytes.Equal(v, []byte{9, 9, 9, 9}) {
		t.Fatalf("unexpected fixed value %v", v)
	}
	if s := c.Stats(); s.Layout != "fixed" || s.ValueWidth != 4 {
		t.Fatalf("unexpected stats %+v", s)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on wrong value width")
		}
		// 幅違いの Put は何も変更しない
		if c.Len() != 2 || !c.Exists(2) || !c.Exists(3) {
			t.Fatalf("rejected put mutated the cache")
		}
	}()
	c.Put(4, 5, []byte{1})
}

func TestCache_InvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero capacity")
		}
	}()
	New(0)
}

func TestCache_CheckDetectsCorruption(t *testing.T) {
	c := New(3)
	c.Put(1, 1, []byte("a"))
	c.Put(2, 2, []byte("b"))
	if err := c.Check(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// スロット番号を壊す
	ref, _ := c.keys.Get(1)
	ref.slot = 1
	c.keys.Put(1, ref)

	err := c.Check()
	var ie *InvariantError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
}

func TestCache_AllAndEvictCallback(t *testing.T) {
	var evicted []uint64
	c := newChecked(2, WithEvictCallback(func(key uint64, value []byte) {
		if string(value) != "v" {
			t.Errorf("callback got value %q", value)
		}
		evicted = append(evicted, key)
	}))
	c.Put(1, 1, []byte("v"))
	c.Put(2, 2, []byte("v"))
	c.Put(3, 3, []byte("v"))
	c.Put(4, 4, []byte("v"))

	if len(evicted) != 2 || evicted[0] != 1 || evicted[1] != 2 {
		t.Fatalf("unexpected evictions %v", evicted)
	}

	seen := map[uint64]bool{}
	for k := range c.All() {
		seen[k] = true
	}
	if len(seen) != 2 || !seen[3] || !seen[4] {
		t.Fatalf("unexpected keys %v", seen)
	}
}
