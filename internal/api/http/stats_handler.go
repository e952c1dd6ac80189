package http

import (
	"net/http"

	"github.com/amakane-hakari/tcache/internal/cache"
)

// StatsSource はキャッシュの状態を返すものです。cache.Locked が満たします。
type StatsSource interface {
	Stats() cache.Stats
}

type statsDTO struct {
	cache.Stats
	Fill float64 `json:"fill"`
}

type statsHandler struct {
	src StatsSource
}

func (h *statsHandler) get(w http.ResponseWriter, _ *http.Request) error {
	s := h.src.Stats()
	writeSuccess(w, http.StatusOK, statsDTO{Stats: s, Fill: float64(s.Len) / float64(s.Cap)})
	return nil
}
