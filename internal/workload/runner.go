package workload

import (
	"context"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"

	"github.com/amakane-hakari/tcache/internal/cache"
)

// Target は Runner が操作するキャッシュです。cache.Locked が満たします。
type Target interface {
	Put(key uint64, t cache.Time, value []byte) bool
	Get(key uint64, now cache.TimeFunc) ([]byte, bool)
	Remove(key uint64) bool
}

type logLike interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// 操作結果の分類。ステータスコードの体裁で vegeta.Metrics に集計させる
const (
	codeHit      = 200
	codeInserted = 201
	codeMiss     = 404
)

// Summary は 負荷の実行結果概要を表します。
type Summary struct {
	Ops       uint64                `json:"ops"`
	Rate      float64               `json:"rate_ops_per_sec"`
	Success   float64               `json:"success_ratio"` // ミス以外の割合
	Latencies vegeta.LatencyMetrics `json:"latencies"`
	Outcomes  map[string]int        `json:"outcomes"`
	Duration  time.Duration         `json:"duration"`
}

// Runner は Generator の操作列を一定レートで Target に適用します。
type Runner struct {
	Rate     int           // 秒間操作数。0 以下なら待たない
	Duration time.Duration // 0 なら ctx がキャンセルされるまで
	MaxOps   uint64        // 0 なら無制限
	Name     string
	Clock    func() cache.Time // nil なら time.Now().UnixNano()
	Logger   logLike
}

// Run は ctx のキャンセル、Duration 経過、MaxOps 到達のいずれかまで負荷を掛け、結果の概要を返します。
func (r *Runner) Run(ctx context.Context, gen *Generator, tgt Target) (*Summary, error) {
	clock := r.Clock
	if clock == nil {
		clock = func() cache.Time { return cache.Time(time.Now().UnixNano()) }
	}
	var pacer vegeta.Pacer = vegeta.ConstantPacer{Freq: r.Rate, Per: time.Second}
	if r.Rate <= 0 {
		pacer = vegeta.ConstantPacer{}
	}

	var m vegeta.Metrics
	var hits uint64
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	began := time.Now()
loop:
	for {
		if r.MaxOps > 0 && hits >= r.MaxOps {
			break
		}
		elapsed := time.Since(began)
		if r.Duration > 0 && elapsed >= r.Duration {
			break
		}
		wait, stop := pacer.Pace(elapsed, hits)
		if stop {
			break
		}
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				break loop
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			break
		}

		op, key, value := gen.Next()
		start := time.Now()
		var code uint16
		var bytesIn uint64
		switch op {
		case OpGet:
			v, ok := tgt.Get(key, clock)
			code, bytesIn = outcome(ok, codeHit), uint64(len(v))
		case OpPut:
			code = codeInserted
			if tgt.Put(key, clock(), value) {
				code = codeHit
			}
		case OpRemove:
			code = outcome(tgt.Remove(key), codeHit)
		}
		res := vegeta.Result{
			Attack:    r.Name,
			Seq:       hits,
			Code:      code,
			Timestamp: start,
			Latency:   time.Since(start),
			BytesOut:  uint64(len(value)),
			BytesIn:   bytesIn,
			Method:    op.String(),
		}
		m.Add(&res)
		hits++
	}
	m.Close()

	s := &Summary{
		Ops:       m.Requests,
		Rate:      m.Rate,
		Success:   m.Success,
		Latencies: m.Latencies,
		Outcomes:  m.StatusCodes,
		Duration:  m.Duration,
	}
	if r.Logger != nil {
		r.Logger.Info("workload.done",
			"name", r.Name,
			"ops", s.Ops,
			"rate", s.Rate,
			"p99_us", s.Latencies.P99.Microseconds(),
		)
	}
	return s, ctx.Err()
}

func outcome(ok bool, code uint16) uint16 {
	if ok {
		return code
	}
	return codeMiss
}
