package timeindex

import "container/heap"

type heapEntry struct {
	t    Time
	slot int
	pos  int // order 内の位置
}

// Heap は二分ヒープと間接参照テーブルによる Index 実装です。
// Insert/Remove/Update は O(log n)、Min は O(1) です。
type Heap struct {
	hs    handles[heapEntry]
	order heapOrder
}

var _ Index = (*Heap)(nil)

// NewHeap は新しい Heap を作成します。
func NewHeap() *Heap {
	h := &Heap{}
	h.order.hs = &h.hs
	return h
}

// Insert はエントリを追加し、そのハンドルを返します。
func (h *Heap) Insert(t Time, slot int) Handle {
	hd := h.hs.alloc(heapEntry{t: t, slot: slot})
	heap.Push(&h.order, hd)
	return hd
}

// Remove はハンドルのエントリを削除します。
func (h *Heap) Remove(hd Handle) {
	e := h.hs.get(hd)
	heap.Remove(&h.order, e.pos)
	h.hs.release(hd)
}

// Update はハンドルのエントリの時刻を変更します。
func (h *Heap) Update(hd Handle, t Time) {
	e := h.hs.get(hd)
	if e.t == t {
		return
	}
	e.t = t
	heap.Fix(&h.order, e.pos)
}

// Move はハンドルのエントリが指すスロット番号を変更します。
func (h *Heap) Move(hd Handle, slot int) {
	h.hs.get(hd).slot = slot
}

// Min は最も古い時刻のエントリを返します。
func (h *Heap) Min() (Handle, bool) {
	if len(h.order.ids) == 0 {
		return NoHandle, false
	}
	return h.order.ids[0], true
}

// Slot はハンドルのエントリのスロット番号を返します。
func (h *Heap) Slot(hd Handle) int { return h.hs.get(hd).slot }

// Time はハンドルのエントリの時刻を返します。
func (h *Heap) Time(hd Handle) Time { return h.hs.get(hd).t }

// Len はエントリ数を返します。
func (h *Heap) Len() int { return len(h.order.ids) }

// Clear は全エントリを削除します。
func (h *Heap) Clear() {
	h.order.ids = h.order.ids[:0]
	h.hs.reset()
}

// heapOrder は container/heap 用にハンドル列を時刻順に並べます。
type heapOrder struct {
	ids []Handle
	hs  *handles[heapEntry]
}

func (o *heapOrder) Len() int { return len(o.ids) }

func (o *heapOrder) Less(i, j int) bool {
	return o.hs.items[o.ids[i]].t < o.hs.items[o.ids[j]].t
}

func (o *heapOrder) Swap(i, j int) {
	o.ids[i], o.ids[j] = o.ids[j], o.ids[i]
	o.hs.items[o.ids[i]].pos = i
	o.hs.items[o.ids[j]].pos = j
}

func (o *heapOrder) Push(x any) {
	hd := x.(Handle)
	o.hs.items[hd].pos = len(o.ids)
	o.ids = append(o.ids, hd)
}

func (o *heapOrder) Pop() any {
	n := len(o.ids) - 1
	hd := o.ids[n]
	o.ids = o.ids[:n]
	return hd
}
