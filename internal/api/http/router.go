// Package http はシミュレータの運用向け HTTP エンドポイントを提供します。
// キャッシュの操作そのものは公開しません。
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ilog "github.com/amakane-hakari/tcache/internal/log"
)

// Deps はルーターが依存するものです。
type Deps struct {
	Stats    StatsSource
	Gatherer prometheus.Gatherer // nil なら prometheus.DefaultGatherer
	Health   *Health             // nil なら常に ok
	Logger   ilog.Logger
}

// NewRouter は運用向けエンドポイントのルーターを作成します。
func NewRouter(d Deps) http.Handler {
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.Health == nil {
		d.Health = &Health{}
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoverMiddleware(d.Logger))
	r.Use(AccessLog(d.Logger))

	r.NotFound(HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) error {
		return NotFound("no such endpoint")
	}).ServeHTTP)
	r.MethodNotAllowed(HandlerFunc(func(_ http.ResponseWriter, r *http.Request) error {
		return MethodNotAllowed(r.Method + " not allowed")
	}).ServeHTTP)

	r.Method(http.MethodGet, "/health", HandlerFunc(d.Health.serve))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	if d.Stats != nil {
		sh := &statsHandler{src: d.Stats}
		r.Method(http.MethodGet, "/stats", HandlerFunc(sh.get))
	}
	return r
}
