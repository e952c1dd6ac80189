// Package cache は容量固定のインメモリキャッシュを提供します。
//
// 満杯のときに新しいキーを追加すると、呼び出し側が与えた時刻が最も古いエントリを
// 1 つ追い出してそのスロットを再利用します。値は密なスロット配列 (valuestore)、
// キーからスロットへの対応はハッシュインデックス (keyindex)、時刻順は
// 時刻インデックス (timeindex) が持ち、Cache はこの 3 つを常に一致させます。
//
// Cache はスレッドセーフではありません。複数ゴルーチンから使う場合は Locked を使うか、
// 呼び出し側で直列化してください。
package cache

import (
	"fmt"
	"iter"

	"github.com/amakane-hakari/tcache/internal/keyindex"
	"github.com/amakane-hakari/tcache/internal/timeindex"
	"github.com/amakane-hakari/tcache/internal/valuestore"
)

// Time は順序付け用の時刻です。
type Time = timeindex.Time

// TimeFunc は時刻を遅延評価する関数です。Get はヒット時にだけ呼び出します。
type TimeFunc func() Time

// At は常に t を返す TimeFunc を作成します。
func At(t Time) TimeFunc {
	return func() Time { return t }
}

type slotRef struct {
	slot   int
	handle timeindex.Handle
}

// Cache は最古のエントリを追い出す容量固定のキャッシュです。
type Cache struct {
	cfg    Config
	keys   *keyindex.Index[slotRef]
	times  timeindex.Index
	values *valuestore.Store

	// 削除で空いた末尾スロットの再利用マーカー (MinTime のエントリ)
	markers  []timeindex.Handle
	nmarkers int
}

// Stats はキャッシュの状態のスナップショットです。
type Stats struct {
	Len        int    `json:"len"`
	Cap        int    `json:"cap"`
	Markers    int    `json:"markers"`
	Layout     string `json:"layout"`
	ValueWidth int    `json:"value_width,omitempty"`
}

// New は容量 capacity のキャッシュを作成します。capacity <= 0 の場合は panic します。
func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		panic(fmt.Sprintf("cache: capacity must be positive, got %d", capacity))
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = defaultConfig().Metrics
	}
	if cfg.TimeIndex == nil {
		cfg.TimeIndex = defaultConfig().TimeIndex
	}
	if cfg.Buckets == 0 {
		cfg.Buckets = keyindex.BucketsFor(capacity)
	}
	if cfg.BucketGrowth == 0 {
		cfg.BucketGrowth = keyindex.DefaultGrowBy
	}

	kopts := []keyindex.Option{keyindex.WithBuckets(cfg.Buckets, cfg.BucketGrowth)}
	if cfg.LockKeyIndex {
		kopts = append(kopts, keyindex.WithRWMutex())
	}

	var values *valuestore.Store
	if cfg.FixedValueSize >= 0 {
		values = valuestore.NewFixed(capacity, cfg.FixedValueSize, cfg.TrackCreateTime)
	} else {
		values = valuestore.NewDynamic(capacity, cfg.TrackCreateTime)
	}

	c := &Cache{
		cfg:     cfg,
		keys:    keyindex.New[slotRef](kopts...),
		times:   cfg.TimeIndex(),
		values:  values,
		markers: make([]timeindex.Handle, capacity),
	}
	for i := range c.markers {
		c.markers[i] = timeindex.NoHandle
	}
	return c
}

// Len は要素数を返します。
func (c *Cache) Len() int { return c.values.Len() }

// Cap は容量を返します。
func (c *Cache) Cap() int { return c.values.Cap() }

// Stats は現在の状態を返します。
func (c *Cache) Stats() Stats {
	return Stats{
		Len:        c.values.Len(),
		Cap:        c.values.Cap(),
		Markers:    c.nmarkers,
		Layout:     c.values.Layout().String(),
		ValueWidth: c.values.Width(),
	}
}

// All は全エントリを順不同で列挙します。値は次の変更操作までしか有効ではなく、
// 列挙中にキャッシュを変更してはいけません。
func (c *Cache) All() iter.Seq2[uint64, []byte] {
	return func(yield func(uint64, []byte) bool) {
		for slot := range c.values.Len() {
			if !yield(c.values.Key(slot), c.values.Value(slot)) {
				return
			}
		}
	}
}
