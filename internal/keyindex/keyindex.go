// Package keyindex は uint64 キーから任意の値への固定バケット数ハッシュマップを提供します。
//
// バケット数は最初の挿入前に一度だけ設定され、以後リサイズはしません。
// 各バケットは {key, val} の可変長配列で、倍々ではなく固定の増分で伸長します。
// 参照ではなく値のコピーを返すため、バケットの再確保が起きても呼び出し側が
// 古い位置を掴み続けることはありません。
package keyindex

import (
	"fmt"
	"iter"
	"sync"
)

const (
	// MinBuckets は設定可能な最小バケット数です。
	MinBuckets = 2
	// DefaultBuckets は未設定時のバケット数です。
	DefaultBuckets = 64
	// DefaultGrowBy はバケット配列の既定の伸長幅です。
	DefaultGrowBy = 4
)

type pair[V any] struct {
	key uint64
	val V
}

// Index は uint64 キーのハッシュインデックスを表します。
type Index[V any] struct {
	buckets [][]pair[V]
	growBy  int
	n       int
	mu      *sync.RWMutex // nil = ロックなし
}

// Option はインデックスのオプションを設定する関数です。
type Option func(*options)

type options struct {
	buckets int
	growBy  int
	locking bool
}

// WithBuckets はバケット数と伸長幅を設定するオプションです。
func WithBuckets(buckets, growBy int) Option {
	return func(o *options) {
		o.buckets = buckets
		o.growBy = growBy
	}
}

// WithRWMutex は読み書きロックを有効にするオプションです。
func WithRWMutex() Option {
	return func(o *options) { o.locking = true }
}

// New は新しい Index を作成します。
func New[V any](opts ...Option) *Index[V] {
	o := options{buckets: DefaultBuckets, growBy: DefaultGrowBy}
	for _, fn := range opts {
		fn(&o)
	}
	ix := &Index[V]{}
	if o.locking {
		ix.mu = &sync.RWMutex{}
	}
	ix.Configure(o.buckets, o.growBy)
	return ix
}

// Configure はバケット数と伸長幅を再設定します。
// 要素が存在する場合や buckets が MinBuckets 未満の場合は panic します。
func (ix *Index[V]) Configure(buckets, growBy int) {
	ix.lock()
	defer ix.unlock()

	if ix.n != 0 {
		panic(fmt.Sprintf("keyindex: configure on non-empty index (len=%d)", ix.n))
	}
	if buckets < MinBuckets {
		panic(fmt.Sprintf("keyindex: bucket count %d below minimum %d", buckets, MinBuckets))
	}
	if growBy < 1 {
		panic(fmt.Sprintf("keyindex: growth increment %d must be positive", growBy))
	}
	ix.buckets = make([][]pair[V], buckets)
	ix.growBy = growBy
}

// Put はキーに値をセットします。既存キーだった場合は true を返します。
func (ix *Index[V]) Put(key uint64, val V) (existed bool) {
	ix.lock()
	defer ix.unlock()

	b := ix.bucketOf(key)
	bucket := ix.buckets[b]
	for i := range bucket {
		if bucket[i].key == key {
			bucket[i].val = val
			return true
		}
	}
	if len(bucket) == cap(bucket) {
		grown := make([]pair[V], len(bucket), cap(bucket)+ix.growBy)
		copy(grown, bucket)
		bucket = grown
	}
	ix.buckets[b] = append(bucket, pair[V]{key: key, val: val})
	ix.n++
	return false
}

// Get はキーに対応する値のコピーを返します。
func (ix *Index[V]) Get(key uint64) (V, bool) {
	ix.rlock()
	defer ix.runlock()

	bucket := ix.buckets[ix.bucketOf(key)]
	for i := range bucket {
		if bucket[i].key == key {
			return bucket[i].val, true
		}
	}
	var zero V
	return zero, false
}

// MustGet はキーに対応する値を返します。キーが存在しない場合は panic します。
func (ix *Index[V]) MustGet(key uint64) V {
	v, ok := ix.Get(key)
	if !ok {
		panic(fmt.Sprintf("keyindex: key %d not found", key))
	}
	return v
}

// Exists はキーが存在するかを返します。
func (ix *Index[V]) Exists(key uint64) bool {
	_, ok := ix.Get(key)
	return ok
}

// Remove はキーを削除します。削除した場合は true を返します。
func (ix *Index[V]) Remove(key uint64) bool {
	ix.lock()
	defer ix.unlock()

	b := ix.bucketOf(key)
	bucket := ix.buckets[b]
	for i := range bucket {
		if bucket[i].key != key {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket[last] = pair[V]{}
		ix.buckets[b] = bucket[:last]
		ix.n--
		return true
	}
	return false
}

// Clear は全要素を削除します。バケットの確保済み領域は再利用します。
func (ix *Index[V]) Clear() {
	ix.lock()
	defer ix.unlock()

	for i, bucket := range ix.buckets {
		clear(bucket)
		ix.buckets[i] = bucket[:0]
	}
	ix.n = 0
}

// Len は要素数を返します。
func (ix *Index[V]) Len() int {
	ix.rlock()
	defer ix.runlock()
	return ix.n
}

// BucketCount はバケット数を返します。
func (ix *Index[V]) BucketCount() int {
	ix.rlock()
	defer ix.runlock()
	return len(ix.buckets)
}

// All は全要素を順不同で列挙します。
// ロックモードでは列挙中は読み取りロックを保持するため、yield 内で変更してはいけません。
func (ix *Index[V]) All() iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		ix.rlock()
		defer ix.runlock()
		for _, bucket := range ix.buckets {
			for _, p := range bucket {
				if !yield(p.key, p.val) {
					return
				}
			}
		}
	}
}

func (ix *Index[V]) bucketOf(key uint64) int {
	return int(hashKey(key) % uint64(len(ix.buckets)))
}

func (ix *Index[V]) lock() {
	if ix.mu != nil {
		ix.mu.Lock()
	}
}

func (ix *Index[V]) unlock() {
	if ix.mu != nil {
		ix.mu.Unlock()
	}
}

func (ix *Index[V]) rlock() {
	if ix.mu != nil {
		ix.mu.RLock()
	}
}

func (ix *Index[V]) runlock() {
	if ix.mu != nil {
		ix.mu.RUnlock()
	}
}
