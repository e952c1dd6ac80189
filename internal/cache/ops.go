package cache

import (
	"fmt"

	"github.com/amakane-hakari/tcache/internal/timeindex"
	"github.com/amakane-hakari/tcache/internal/valuestore"
)

// Put はキーに値と時刻をセットします。既存キーを更新した場合は true、
// 新しく追加した場合は false を返します。満杯なら最も古いエントリを追い出します。
func (c *Cache) Put(key uint64, t Time, value []byte) bool {
	if w := c.values.Width(); c.values.Layout() == valuestore.Fixed && len(value) != w {
		panic(fmt.Sprintf("cache: fixed value must be %d bytes, got %d", w, len(value)))
	}
	if ref, ok := c.keys.Get(key); ok {
		c.values.Write(ref.slot, key, value)
		c.times.Update(ref.handle, t)
		c.cfg.Metrics.IncPutUpdate()
		if c.cfg.Logger != nil {
			c.cfg.Logger.Debug("cache.update", "key", key, "slot", ref.slot, "time", int64(t))
		}
		c.verify("put")
		return true
	}

	var slot int
	if c.values.Len() < c.values.Cap() {
		slot = c.values.Claim()
		c.dropMarker(slot)
	} else {
		slot = c.evictOldest()
	}

	c.values.Write(slot, key, value)
	c.values.SetCreated(slot, int64(t))
	h := c.times.Insert(t, slot)
	c.keys.Put(key, slotRef{slot: slot, handle: h})

	c.cfg.Metrics.IncPutNew()
	c.cfg.Metrics.SetSize(c.values.Len())
	if c.cfg.Logger != nil {
		c.cfg.Logger.Debug("cache.put", "key", key, "slot", slot, "time", int64(t))
	}
	c.verify("put")
	return false
}

// Get はキーに対応する値のコピーを返します。ヒットした場合だけ now を評価し、
// エントリの時刻をその値に更新します。
func (c *Cache) Get(key uint64, now TimeFunc) ([]byte, bool) {
	ref, ok := c.keys.Get(key)
	if !ok {
		c.cfg.Metrics.IncGetMiss()
		return nil, false
	}
	c.times.Update(ref.handle, now())
	c.cfg.Metrics.IncGetHit()

	v := c.values.Value(ref.slot)
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// GetAt は時刻 t で Get します。
func (c *Cache) GetAt(key uint64, t Time) ([]byte, bool) {
	return c.Get(key, At(t))
}

// AppendGet は Get と同じですが、値を dst に追記して返します。
func (c *Cache) AppendGet(dst []byte, key uint64, now TimeFunc) ([]byte, bool) {
	ref, ok := c.keys.Get(key)
	if !ok {
		c.cfg.Metrics.IncGetMiss()
		return dst, false
	}
	c.times.Update(ref.handle, now())
	c.cfg.Metrics.IncGetHit()
	return c.values.AppendValue(dst, ref.slot), true
}

// Exists はキーが存在するかを返します。時刻は更新しません。
func (c *Cache) Exists(key uint64) bool {
	return c.keys.Exists(key)
}

// AccessTime はキーの現在の順序付け時刻を返します。存在しない場合は 0 です。
func (c *Cache) AccessTime(key uint64) Time {
	ref, ok := c.keys.Get(key)
	if !ok {
		return 0
	}
	return c.times.Time(ref.handle)
}

// CreateTime はキーの作成時刻を返します。存在しない場合は 0 です。
// WithCreateTime を指定していない場合は panic します。
func (c *Cache) CreateTime(key uint64) Time {
	if !c.values.TracksCreated() {
		panic("cache: CreateTime requires WithCreateTime")
	}
	ref, ok := c.keys.Get(key)
	if !ok {
		return 0
	}
	return Time(c.values.Created(ref.slot))
}

// Remove はキーを削除します。削除した場合は true を返します。
func (c *Cache) Remove(key uint64) bool {
	ref, ok := c.keys.Get(key)
	if !ok {
		return false
	}
	c.times.Remove(ref.handle)
	c.keys.Remove(key)

	last := c.values.Len() - 1
	if movedKey, moved := c.values.SwapDelete(ref.slot); moved {
		mref, ok := c.keys.Get(movedKey)
		if !ok {
			fail("remove", "moved key %d missing from key index", movedKey)
		}
		if mref.slot != last {
			fail("remove", "moved key %d indexed at slot %d, expected %d", movedKey, mref.slot, last)
		}
		mref.slot = ref.slot
		c.keys.Put(movedKey, mref)
		c.times.Move(mref.handle, ref.slot)
	}
	c.placeMarker(last)

	c.cfg.Metrics.IncRemoved()
	c.cfg.Metrics.SetSize(c.values.Len())
	if c.cfg.Logger != nil {
		c.cfg.Logger.Debug("cache.remove", "key", key, "slot", ref.slot)
	}
	c.verify("remove")
	return true
}

// Clear は全エントリを削除します。
func (c *Cache) Clear() {
	n := c.values.Len()
	c.times.Clear()
	c.keys.Clear()
	c.values.Reset()
	for i := range c.markers {
		c.markers[i] = timeindex.NoHandle
	}
	c.nmarkers = 0

	c.cfg.Metrics.SetSize(0)
	if c.cfg.Logger != nil {
		c.cfg.Logger.Info("cache.clear", "removed", n)
	}
	c.verify("clear")
}

// evictOldest は時刻が最も古いエントリを追い出し、空いたスロットを返します。
func (c *Cache) evictOldest() int {
	h, ok := c.times.Min()
	if !ok {
		fail("evict", "time index empty at size %d", c.values.Len())
	}
	slot := c.times.Slot(h)
	if c.markers[slot] == h {
		fail("evict", "reuse marker for slot %d present while full", slot)
	}
	victim := c.values.Key(slot)
	ref, ok := c.keys.Get(victim)
	if !ok || ref.slot != slot || ref.handle != h {
		fail("evict", "key %d at slot %d not indexed consistently", victim, slot)
	}

	if c.cfg.OnEvict != nil {
		c.cfg.OnEvict(victim, c.values.Value(slot))
	}
	t := c.times.Time(h)
	c.times.Remove(h)
	c.keys.Remove(victim)

	c.cfg.Metrics.AddEvicted(1)
	if c.cfg.Logger != nil {
		c.cfg.Logger.Debug("cache.evict", "key", victim, "slot", slot, "time", int64(t))
	}
	return slot
}

// placeMarker は削除で空いた末尾スロットに MinTime のエントリを置き、
// 次に再利用されるスロットとして先頭に並べます。
func (c *Cache) placeMarker(slot int) {
	if c.markers[slot] != timeindex.NoHandle {
		fail("remove", "reuse marker for slot %d already present", slot)
	}
	c.markers[slot] = c.times.Insert(timeindex.MinTime, slot)
	c.nmarkers++
}

// dropMarker はスロットが再び使われたときにマーカーを取り除きます。
func (c *Cache) dropMarker(slot int) {
	h := c.markers[slot]
	if h == timeindex.NoHandle {
		return
	}
	c.times.Remove(h)
	c.markers[slot] = timeindex.NoHandle
	c.nmarkers--
}
