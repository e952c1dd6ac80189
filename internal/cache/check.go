package cache

import (
	"fmt"

	"github.com/amakane-hakari/tcache/internal/timeindex"
)

// Check は 3 つの内部構造が互いに一致しているかを O(n) で検査します。
func (c *Cache) Check() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &InvariantError{Op: "check", Detail: fmt.Sprint(rec)}
		}
	}()

	size := c.values.Len()
	if size > c.values.Cap() {
		return &InvariantError{Op: "check", Detail: fmt.Sprintf("size %d exceeds capacity %d", size, c.values.Cap())}
	}
	if n := c.keys.Len(); n != size {
		return &InvariantError{Op: "check", Detail: fmt.Sprintf("key index has %d entries, size is %d", n, size)}
	}
	if n := c.times.Len(); n != size+c.nmarkers {
		return &InvariantError{Op: "check", Detail: fmt.Sprintf("time index has %d entries, want %d live + %d markers", n, size, c.nmarkers)}
	}

	for slot := range size {
		key := c.values.Key(slot)
		ref, ok := c.keys.Get(key)
		switch {
		case !ok:
			return &InvariantError{Op: "check", Detail: fmt.Sprintf("key %d at slot %d missing from key index", key, slot)}
		case ref.slot != slot:
			return &InvariantError{Op: "check", Detail: fmt.Sprintf("key %d at slot %d indexed at slot %d", key, slot, ref.slot)}
		case c.times.Slot(ref.handle) != slot:
			return &InvariantError{Op: "check", Detail: fmt.Sprintf("key %d handle points at slot %d, want %d", key, c.times.Slot(ref.handle), slot)}
		}
	}

	markers := 0
	for slot, h := range c.markers {
		if h == timeindex.NoHandle {
			continue
		}
		markers++
		switch {
		case slot < size:
			return &InvariantError{Op: "check", Detail: fmt.Sprintf("reuse marker on active slot %d", slot)}
		case c.times.Slot(h) != slot || c.times.Time(h) != timeindex.MinTime:
			return &InvariantError{Op: "check", Detail: fmt.Sprintf("reuse marker for slot %d is malformed", slot)}
		}
	}
	if markers != c.nmarkers {
		return &InvariantError{Op: "check", Detail: fmt.Sprintf("counted %d markers, tracked %d", markers, c.nmarkers)}
	}
	return nil
}

func (c *Cache) verify(op string) {
	if !c.cfg.CheckInvariants {
		return
	}
	if err := c.Check(); err != nil {
		fail(op, "%v", err)
	}
}
