package cache

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Typed は値を固定レイアウトの構造体 T として扱うキャッシュです。
// T のメモリ表現をそのまま値として複製するため、T はポインタを含んではいけません。
type Typed[T any] struct {
	c *Cache
}

// NewTyped は T 用のキャッシュを作成します。T がポインタ・スライス・文字列・
// マップなどの参照を含む場合は panic します。
func NewTyped[T any](capacity int, opts ...Option) *Typed[T] {
	var zero T
	rt := reflect.TypeOf(&zero).Elem()
	if path, bad := referenceIn(rt, rt.String()); bad {
		panic(fmt.Sprintf("cache: %s contains a reference at %s", rt, path))
	}
	opts = append(opts, WithFixedValueSize(int(unsafe.Sizeof(zero))))
	return &Typed[T]{c: New(capacity, opts...)}
}

// Cache は内部の Cache を返します。
func (tc *Typed[T]) Cache() *Cache { return tc.c }

// Put は v のコピーをセットします。既存キーを更新した場合は true を返します。
func (tc *Typed[T]) Put(key uint64, t Time, v T) bool {
	return tc.c.Put(key, t, bytesOf(&v))
}

// Get はキーに対応する値のコピーを返します。now はヒット時にだけ評価されます。
func (tc *Typed[T]) Get(key uint64, now TimeFunc) (T, bool) {
	var out T
	ref, ok := tc.c.keys.Get(key)
	if !ok {
		tc.c.cfg.Metrics.IncGetMiss()
		return out, false
	}
	tc.c.times.Update(ref.handle, now())
	tc.c.cfg.Metrics.IncGetHit()
	copy(bytesOf(&out), tc.c.values.Value(ref.slot))
	return out, true
}

// GetAt は時刻 t で Get します。
func (tc *Typed[T]) GetAt(key uint64, t Time) (T, bool) { return tc.Get(key, At(t)) }

// Exists はキーが存在するかを返します。
func (tc *Typed[T]) Exists(key uint64) bool { return tc.c.Exists(key) }

// Remove はキーを削除します。
func (tc *Typed[T]) Remove(key uint64) bool { return tc.c.Remove(key) }

// Clear は全エントリを削除します。
func (tc *Typed[T]) Clear() { tc.c.Clear() }

// Len は要素数を返します。
func (tc *Typed[T]) Len() int { return tc.c.Len() }

// AccessTime はキーの順序付け時刻を返します。存在しない場合は 0 です。
func (tc *Typed[T]) AccessTime(key uint64) Time { return tc.c.AccessTime(key) }

// CreateTime はキーの作成時刻を返します。存在しない場合は 0 です。
func (tc *Typed[T]) CreateTime(key uint64) Time { return tc.c.CreateTime(key) }

func bytesOf[T any](v *T) []byte {
	n := int(unsafe.Sizeof(*v))
	if n == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), n)
}

// referenceIn は t が参照を含むかを調べ、含む場合はその位置を返します。
func referenceIn(t reflect.Type, path string) (string, bool) {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return "", false
	case reflect.Array:
		return referenceIn(t.Elem(), path+"[]")
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if p, bad := referenceIn(f.Type, path+"."+f.Name); bad {
				return p, true
			}
		}
		return "", false
	default:
		return path, true
	}
}
