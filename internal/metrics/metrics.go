// Package metrics はキャッシュの操作回数を記録するための抽象と実装を提供します。
package metrics

import (
	"sync/atomic"
)

// Interface はメトリクス更新用抽象
type Interface interface {
	IncPutNew()
	IncPutUpdate()
	IncGetHit()
	IncGetMiss()
	AddEvicted(n int)
	IncRemoved()
	SetSize(n int)
}

// Noop は何もしないメトリクス実装
type Noop struct{}

// IncPutNew は何もしないメトリクス実装
func (Noop) IncPutNew() {}

// IncPutUpdate は何もしないメトリクス実装
func (Noop) IncPutUpdate() {}

// IncGetHit は何もしないメトリクス実装
func (Noop) IncGetHit() {}

// IncGetMiss は何もしないメトリクス実装
func (Noop) IncGetMiss() {}

// AddEvicted は何もしないメトリクス実装
func (Noop) AddEvicted(_ int) {}

// IncRemoved は何もしないメトリクス実装
func (Noop) IncRemoved() {}

// SetSize は何もしないメトリクス実装
func (Noop) SetSize(_ int) {}

// Simple はシンプルなメトリクス実装です。
type Simple struct {
	PutNew    atomic.Uint64
	PutUpdate atomic.Uint64
	GetHit    atomic.Uint64
	GetMiss   atomic.Uint64
	Evicted   atomic.Uint64
	Removed   atomic.Uint64
	Size      atomic.Uint64
}

// NewSimple は新しい Simple メトリクスを作成します。
func NewSimple() *Simple { return &Simple{} }

// IncPutNew は新しいキーが追加されたことをカウントします。
func (m *Simple) IncPutNew() { m.PutNew.Add(1) }

// IncPutUpdate は既存のキーが更新されたことをカウントします。
func (m *Simple) IncPutUpdate() { m.PutUpdate.Add(1) }

// IncGetHit はキャッシュヒットをカウントします。
func (m *Simple) IncGetHit() { m.GetHit.Add(1) }

// IncGetMiss はキャッシュミスをカウントします。
func (m *Simple) IncGetMiss() { m.GetMiss.Add(1) }

// AddEvicted はエビクションされたアイテムの数を加算します。
func (m *Simple) AddEvicted(n int) {
	if n > 0 {
		m.Evicted.Add(uint64(n))
	}
}

// IncRemoved は明示的に削除されたアイテムをカウントします。
func (m *Simple) IncRemoved() { m.Removed.Add(1) }

// SetSize は現在の要素数を設定します。
func (m *Simple) SetSize(n int) {
	if n >= 0 {
		m.Size.Store(uint64(n))
	}
}
