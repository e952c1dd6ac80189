package http

import (
	"net/http"
	"sync/atomic"
)

// Health はヘルスチェックの状態を保持します。
type Health struct {
	draining atomic.Bool
}

// SetDraining はドレイニング状態を設定します。
func (h *Health) SetDraining(v bool) {
	h.draining.Store(v)
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Health) serve(w http.ResponseWriter, _ *http.Request) error {
	if h.draining.Load() {
		return Unavailable("draining")
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	return nil
}
