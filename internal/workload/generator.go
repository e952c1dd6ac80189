// Package workload はキャッシュに対する合成負荷の生成と実行を提供します。
package workload

import (
	"math/rand"
)

// Op は操作の種類です。
type Op int

const (
	// OpGet は取得操作です。
	OpGet Op = iota
	// OpPut は追加・更新操作です。
	OpPut
	// OpRemove は削除操作です。
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpGet:
		return "GET"
	case OpPut:
		return "PUT"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Generator は 負荷の操作列を生成する構造体です。スレッドセーフではありません。
type Generator struct {
	Keys        int
	ReadRatio   float64
	RemoveRatio float64
	ValueSize   int

	rnd *rand.Rand
	buf []byte
}

// NewGenerator は 指定されたパラメータに基づいて新しい Generator を作成します。
func NewGenerator(keys int, readRatio, removeRatio float64, valueSize int, seed int64) *Generator {
	if keys < 1 {
		keys = 1
	}
	readRatio = clamp(readRatio, 0, 1)
	return &Generator{
		Keys:        keys,
		ReadRatio:   readRatio,
		RemoveRatio: clamp(removeRatio, 0, 1-readRatio),
		ValueSize:   valueSize,
		rnd:         rand.New(rand.NewSource(seed)),
		buf:         make([]byte, valueSize),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Next は次の操作を返します。value は OpPut のときだけ設定され、次の呼び出しまで有効です。
func (g *Generator) Next() (op Op, key uint64, value []byte) {
	key = uint64(g.rnd.Intn(g.Keys))
	p := g.rnd.Float64()
	switch {
	case p < g.ReadRatio:
		return OpGet, key, nil
	case p < g.ReadRatio+g.RemoveRatio:
		return OpRemove, key, nil
	}
	fillRandomLetters(g.rnd, g.buf)
	return OpPut, key, g.buf
}

func fillRandomLetters(r *rand.Rand, buf []byte) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	for i := range buf {
		buf[i] = letters[r.Intn(len(letters))]
	}
}
