package cache

import "fmt"

// InvariantError はキャッシュ内部の整合性が壊れたことを表します。
// 回復できない不具合であり、panic の値として送出されます。
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return "cache: invariant violated in " + e.Op + ": " + e.Detail
}

func fail(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
