// Package timeindex はアクセス時刻順にスロットを並べる順序付きインデックスを提供します。
package timeindex

import "math"

// Time は呼び出し側が与える順序付け用の時刻です。壁時計である必要はありません。
type Time int64

// MinTime は表現可能な最小の時刻です。
const MinTime Time = math.MinInt64

// Handle はインデックス内のエントリを指す不透明な参照です。
// エントリが削除されるまで値は変わりません。
type Handle int32

// NoHandle はエントリを指さないハンドルです。
const NoHandle Handle = -1

// Index は時刻からスロット番号への順序付きマップのインターフェースです。
type Index interface {
	// Insert はエントリを追加し、そのハンドルを返します。
	Insert(t Time, slot int) Handle
	// Remove はハンドルのエントリを削除します。
	Remove(h Handle)
	// Update はハンドルのエントリの時刻を変更します。
	Update(h Handle, t Time)
	// Move はハンドルのエントリが指すスロット番号を変更します。順序は変わりません。
	Move(h Handle, slot int)
	// Min は最も古い時刻のエントリを返します。同時刻同士の順序は不定です。
	Min() (Handle, bool)
	// Slot はハンドルのエントリのスロット番号を返します。
	Slot(h Handle) int
	// Time はハンドルのエントリの時刻を返します。
	Time(h Handle) Time
	// Len はエントリ数を返します。
	Len() int
	// Clear は全エントリを削除します。
	Clear()
}

// handles は Handle の払い出しと再利用を管理します。
type handles[E any] struct {
	items []E
	live  []bool
	free  []Handle
}

func (hs *handles[E]) alloc(e E) Handle {
	if n := len(hs.free); n > 0 {
		h := hs.free[n-1]
		hs.free = hs.free[:n-1]
		hs.items[h] = e
		hs.live[h] = true
		return h
	}
	hs.items = append(hs.items, e)
	hs.live = append(hs.live, true)
	return Handle(len(hs.items) - 1)
}

func (hs *handles[E]) release(h Handle) {
	var zero E
	hs.items[h] = zero
	hs.live[h] = false
	hs.free = append(hs.free, h)
}

func (hs *handles[E]) get(h Handle) *E {
	if h < 0 || int(h) >= len(hs.items) || !hs.live[h] {
		panic("timeindex: stale or invalid handle")
	}
	return &hs.items[h]
}

func (hs *handles[E]) reset() {
	hs.items = hs.items[:0]
	hs.live = hs.live[:0]
	hs.free = hs.free[:0]
}
