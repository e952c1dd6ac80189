package timeindex

import "github.com/google/btree"

// DefaultDegree は BTree の既定の次数です。
const DefaultDegree = 32

type btreeEntry struct {
	t    Time
	slot int
}

type btreeItem struct {
	t Time
	h Handle
}

func lessItem(a, b btreeItem) bool {
	if a.t != b.t {
		return a.t < b.t
	}
	return a.h < b.h
}

// BTree は (時刻, ハンドル) 順の B-tree による Index 実装です。
type BTree struct {
	hs   handles[btreeEntry]
	tree *btree.BTreeG[btreeItem]
}

var _ Index = (*BTree)(nil)

// NewBTree は次数 degree の BTree を作成します。degree < 2 の場合は DefaultDegree を使います。
func NewBTree(degree int) *BTree {
	if degree < 2 {
		degree = DefaultDegree
	}
	return &BTree{tree: btree.NewG[btreeItem](degree, lessItem)}
}

// Insert はエントリを追加し、そのハンドルを返します。
func (b *BTree) Insert(t Time, slot int) Handle {
	h := b.hs.alloc(btreeEntry{t: t, slot: slot})
	b.tree.ReplaceOrInsert(btreeItem{t: t, h: h})
	return h
}

// Remove はハンドルのエントリを削除します。
func (b *BTree) Remove(h Handle) {
	e := b.hs.get(h)
	if _, ok := b.tree.Delete(btreeItem{t: e.t, h: h}); !ok {
		panic("timeindex: btree entry missing for live handle")
	}
	b.hs.release(h)
}

// Update はハンドルのエントリの時刻を変更します。
func (b *BTree) Update(h Handle, t Time) {
	e := b.hs.get(h)
	if e.t == t {
		return
	}
	b.tree.Delete(btreeItem{t: e.t, h: h})
	e.t = t
	b.tree.ReplaceOrInsert(btreeItem{t: t, h: h})
}

// Move はハンドルのエントリが指すスロット番号を変更します。
func (b *BTree) Move(h Handle, slot int) {
	b.hs.get(h).slot = slot
}

// Min は最も古い時刻のエントリを返します。
func (b *BTree) Min() (Handle, bool) {
	it, ok := b.tree.Min()
	if !ok {
		return NoHandle, false
	}
	return it.h, true
}

// Slot はハンドルのエントリのスロット番号を返します。
func (b *BTree) Slot(h Handle) int { return b.hs.get(h).slot }

// Time はハンドルのエントリの時刻を返します。
func (b *BTree) Time(h Handle) Time { return b.hs.get(h).t }

// Len はエントリ数を返します。
func (b *BTree) Len() int { return b.tree.Len() }

// Clear は全エントリを削除します。
func (b *BTree) Clear() {
	b.tree.Clear(true)
	b.hs.reset()
}
