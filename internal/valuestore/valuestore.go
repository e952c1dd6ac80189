// Package valuestore はキャッシュの値を密な固定長スロット配列に保持します。
//
// 有効なスロットは常に [0, Len()) に詰めて並び、削除は末尾スロットを
// 空いた位置へ移す swap-delete で行います。
package valuestore

import "fmt"

// Layout は値の格納形式です。
type Layout int

const (
	// Dynamic は可変長の値をスロット毎のバッファに格納します。
	Dynamic Layout = iota
	// Fixed は固定長の値を連続した 1 本のバッファに格納します。
	Fixed
)

func (l Layout) String() string {
	if l == Fixed {
		return "fixed"
	}
	return "dynamic"
}

// Store はスロット配列を表します。容量は作成後に変わりません。
type Store struct {
	layout  Layout
	width   int // Fixed のときの値の長さ
	size    int
	keys    []uint64
	created []int64 // nil = 作成時刻を記録しない

	flat []byte   // Fixed
	bufs [][]byte // Dynamic
}

// NewFixed は値の長さが width バイト固定の Store を作成します。
func NewFixed(capacity, width int, trackCreated bool) *Store {
	if width < 0 {
		panic(fmt.Sprintf("valuestore: negative value width %d", width))
	}
	s := newStore(capacity, trackCreated)
	s.layout = Fixed
	s.width = width
	s.flat = make([]byte, capacity*width)
	return s
}

// NewDynamic は可変長の値を格納する Store を作成します。
func NewDynamic(capacity int, trackCreated bool) *Store {
	s := newStore(capacity, trackCreated)
	s.layout = Dynamic
	s.bufs = make([][]byte, capacity)
	return s
}

func newStore(capacity int, trackCreated bool) *Store {
	if capacity <= 0 {
		panic(fmt.Sprintf("valuestore: capacity must be positive, got %d", capacity))
	}
	s := &Store{keys: make([]uint64, capacity)}
	if trackCreated {
		s.created = make([]int64, capacity)
	}
	return s
}

// Layout は格納形式を返します。
func (s *Store) Layout() Layout { return s.layout }

// Width は Fixed の値の長さを返します。Dynamic では 0 です。
func (s *Store) Width() int { return s.width }

// Cap は容量を返します。
func (s *Store) Cap() int { return len(s.keys) }

// Len は有効なスロット数を返します。
func (s *Store) Len() int { return s.size }

// TracksCreated は作成時刻を記録しているかを返します。
func (s *Store) TracksCreated() bool { return s.created != nil }

// Claim は末尾の空きスロットを有効にし、その番号を返します。
func (s *Store) Claim() int {
	if s.size == len(s.keys) {
		panic("valuestore: claim on full store")
	}
	slot := s.size
	s.size++
	return slot
}

// Write はスロットにキーと値をコピーします。
func (s *Store) Write(slot int, key uint64, value []byte) {
	s.check(slot)
	s.keys[slot] = key
	if s.layout == Fixed {
		if len(value) != s.width {
			panic(fmt.Sprintf("valuestore: fixed value must be %d bytes, got %d", s.width, len(value)))
		}
		copy(s.flat[slot*s.width:], value)
		return
	}
	s.bufs[slot] = append(s.bufs[slot][:0], value...)
}

// Value はスロットの値を返します。次の変更操作までしか有効ではありません。
func (s *Store) Value(slot int) []byte {
	s.check(slot)
	if s.layout == Fixed {
		off := slot * s.width
		return s.flat[off : off+s.width : off+s.width]
	}
	return s.bufs[slot]
}

// AppendValue はスロットの値を dst に追記して返します。
func (s *Store) AppendValue(dst []byte, slot int) []byte {
	return append(dst, s.Value(slot)...)
}

// Key はスロットのキーを返します。
func (s *Store) Key(slot int) uint64 {
	s.check(slot)
	return s.keys[slot]
}

// Created はスロットの作成時刻を返します。記録していない場合は 0 です。
func (s *Store) Created(slot int) int64 {
	s.check(slot)
	if s.created == nil {
		return 0
	}
	return s.created[slot]
}

// SetCreated はスロットの作成時刻を記録します。
func (s *Store) SetCreated(slot int, t int64) {
	s.check(slot)
	if s.created != nil {
		s.created[slot] = t
	}
}

// SwapDelete はスロットを削除します。末尾以外を削除した場合は末尾スロットの内容を
// 空いた位置へ移し、移動したキーと moved=true を返します。
// 呼び出し側は移動したキーのインデックスを slot に付け替える必要があります。
func (s *Store) SwapDelete(slot int) (movedKey uint64, moved bool) {
	s.check(slot)
	last := s.size - 1
	s.size--
	if slot == last {
		return 0, false
	}

	s.keys[slot] = s.keys[last]
	if s.created != nil {
		s.created[slot] = s.created[last]
	}
	if s.layout == Fixed {
		copy(s.flat[slot*s.width:(slot+1)*s.width], s.flat[last*s.width:(last+1)*s.width])
	} else {
		// バッファは入れ替えて、解放された側を末尾で再利用する
		s.bufs[slot], s.bufs[last] = s.bufs[last], s.bufs[slot][:0]
	}
	return s.keys[slot], true
}

// Reset は全スロットを無効にします。確保済みバッファは再利用します。
func (s *Store) Reset() {
	s.size = 0
}

func (s *Store) check(slot int) {
	if slot < 0 || slot >= s.size {
		panic(fmt.Sprintf("valuestore: slot %d out of range [0,%d)", slot, s.size))
	}
}
