package cache

import "sync"

// Locked は Cache 全体を 1 つのミューテックスで直列化するラッパーです。
// Get も時刻を更新するため、読み取りロックは使いません。
type Locked struct {
	mu sync.Mutex
	c  *Cache
}

// NewLocked は容量 capacity の Locked を作成します。
func NewLocked(capacity int, opts ...Option) *Locked {
	return &Locked{c: New(capacity, opts...)}
}

// Put は Cache.Put をロック下で呼び出します。
func (l *Locked) Put(key uint64, t Time, value []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Put(key, t, value)
}

// Get は Cache.Get をロック下で呼び出します。
func (l *Locked) Get(key uint64, now TimeFunc) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Get(key, now)
}

// Exists は Cache.Exists をロック下で呼び出します。
func (l *Locked) Exists(key uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Exists(key)
}

// Remove は Cache.Remove をロック下で呼び出します。
func (l *Locked) Remove(key uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Remove(key)
}

// Clear は Cache.Clear をロック下で呼び出します。
func (l *Locked) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Clear()
}

// Len は要素数を返します。
func (l *Locked) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Len()
}

// Cap は容量を返します。
func (l *Locked) Cap() int { return l.c.Cap() }

// Stats は現在の状態を返します。
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Stats()
}

// Do はロックを保持したまま fn を呼び出します。複数の操作をまとめて行うときに使います。
func (l *Locked) Do(fn func(c *Cache)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.c)
}
