package http

import (
	"net/http"
	"time"

	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/pkg/httpx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// ReadyzHandler reports whether the service can actually serve: the store
// answers a ping and a token codec was configured. Degraded components are
// named individually in the checks block.
func ReadyzHandler(startTime time.Time, version string, st store.Store, codec *tokenx.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{
			Store:  "ok",
			Signer: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Store = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if codec == nil {
			checks.Signer = "error: no signing key configured"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
