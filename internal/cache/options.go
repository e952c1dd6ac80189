package cache

import (
	"github.com/amakane-hakari/tcache/internal/metrics"
	"github.com/amakane-hakari/tcache/internal/timeindex"
)

type logLike interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// EvictCallback はエビクション時に呼ばれます。value はコールバック中のみ有効で、
// コールバック内からキャッシュを操作してはいけません。
type EvictCallback func(key uint64, value []byte)

// Config はキャッシュの設定を表します。
type Config struct {
	Buckets         int // 0 なら容量から決める
	BucketGrowth    int // 0 なら keyindex.DefaultGrowBy
	FixedValueSize  int // < 0 なら可変長
	TrackCreateTime bool
	LockKeyIndex    bool
	CheckInvariants bool
	Logger          logLike
	Metrics         metrics.Interface
	TimeIndex       func() timeindex.Index
	OnEvict         EvictCallback
}

// Option はキャッシュのオプションを設定する関数です。
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		FixedValueSize: -1,
		Metrics:        metrics.Noop{},
		TimeIndex:      func() timeindex.Index { return timeindex.NewHeap() },
	}
}

// WithLogger はキャッシュのロガーを設定するオプションです。
func WithLogger(l logLike) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics はキャッシュのメトリクスを設定するオプションです。
func WithMetrics(m metrics.Interface) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithBuckets はキーインデックスのバケット数と伸長幅を設定するオプションです。
func WithBuckets(buckets, growBy int) Option {
	return func(c *Config) {
		c.Buckets = buckets
		c.BucketGrowth = growBy
	}
}

// WithFixedValueSize は値を n バイト固定にするオプションです。
func WithFixedValueSize(n int) Option {
	return func(c *Config) { c.FixedValueSize = n }
}

// WithCreateTime は作成時刻の記録を有効にするオプションです。
func WithCreateTime() Option {
	return func(c *Config) { c.TrackCreateTime = true }
}

// WithKeyIndexLocking はキーインデックスの読み書きロックを有効にするオプションです。
// キャッシュ全体をスレッドセーフにするものではありません。
func WithKeyIndexLocking() Option {
	return func(c *Config) { c.LockKeyIndex = true }
}

// WithInvariantChecks は変更操作ごとに内部整合性を検査するオプションです (O(n))。
func WithInvariantChecks() Option {
	return func(c *Config) { c.CheckInvariants = true }
}

// WithTimeIndex は時刻インデックスの実装を差し替えるオプションです。
func WithTimeIndex(fn func() timeindex.Index) Option {
	return func(c *Config) { c.TimeIndex = fn }
}

// WithEvictCallback はエビクション時のコールバックを設定するオプションです。
func WithEvictCallback(fn EvictCallback) Option {
	return func(c *Config) { c.OnEvict = fn }
}
