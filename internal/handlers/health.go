package handlers

import (
	"net/http"
	"strings"

	"sci-cast/internal/feed"
)

// Health handles GET /api/health: per-provider reachability without
// mutating any state. Degraded providers flip the status to 503 so
// orchestration can see it, but the payload always lists each provider
// individually.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]bool{
		"elevenlabs": h.synth != nil && h.synth.Healthy(r.Context()),
		"cerebras":   h.cerebrasSet,
		"storage":    h.mirror != nil && h.mirror.Configured(),
	}

	status := http.StatusOK
	for _, ok := range checks {
		if !ok {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]any{
		"status":    statusWord(status),
		"providers": checks,
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

// Feed handles GET /rss, rendering the catalog as podcast RSS.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	podcasts, err := h.catalog.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}

	xml, err := feed.GenerateRSS(podcasts, feed.BaseURL(h.baseURL, r))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(strings.TrimSpace(xml)))
}
