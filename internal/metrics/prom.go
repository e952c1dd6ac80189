package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prom は Prometheus を使ったメトリクス実装です。
type Prom struct {
	putNew    prometheus.Counter
	putUpdate prometheus.Counter
	getHit    prometheus.Counter
	getMiss   prometheus.Counter
	evicted   prometheus.Counter
	removed   prometheus.Counter
	size      prometheus.Gauge
}

// NewProm は Prometheus を使ったメトリクス実装を初期化し、reg に登録します。
// 同じ namespace で 2 回登録すると panic するため、reg ごとに 1 回だけ呼んでください。
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	makeC := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}
	makeG := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	p := &Prom{
		putNew:    makeC("put_new_total", "Number of new keys inserted"),
		putUpdate: makeC("put_update_total", "Number of existing keys overwritten"),
		getHit:    makeC("get_hit_total", "Number of cache hits"),
		getMiss:   makeC("get_miss_total", "Number of cache misses"),
		evicted:   makeC("evicted_total", "Number of entries evicted as oldest"),
		removed:   makeC("removed_total", "Number of entries removed explicitly"),
		size:      makeG("entries", "Current number of cached entries"),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		p.putNew, p.putUpdate, p.getHit, p.getMiss, p.evicted, p.removed, p.size,
	)
	return p
}

// IncPutNew は新しいキーが追加されたことをカウントします。
func (p *Prom) IncPutNew() { p.putNew.Inc() }

// IncPutUpdate は既存のキーが更新されたことをカウントします。
func (p *Prom) IncPutUpdate() { p.putUpdate.Inc() }

// IncGetHit はキャッシュヒットをカウントします。
func (p *Prom) IncGetHit() { p.getHit.Inc() }

// IncGetMiss はキャッシュミスをカウントします。
func (p *Prom) IncGetMiss() { p.getMiss.Inc() }

// AddEvicted は追い出されたアイテムの数を加算します。
func (p *Prom) AddEvicted(n int) {
	if n > 0 {
		p.evicted.Add(float64(n))
	}
}

// IncRemoved は明示的に削除されたアイテムをカウントします。
func (p *Prom) IncRemoved() { p.removed.Inc() }

// SetSize は現在の要素数を設定します。
func (p *Prom) SetSize(n int) {
	if n >= 0 {
		p.size.Set(float64(n))
	}
}
