package http

import (
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// HousekeepingHandler serves POST /v1/cron/housekeeping: an immediate sweep
// of expired store entries, on top of the periodic background one. Gated by
// the cron secret.
type HousekeepingHandler struct {
	Housekeeping *service.HousekeepingService
}

func (h *HousekeepingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Housekeeping.RunOnce(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
