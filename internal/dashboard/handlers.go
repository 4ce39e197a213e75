package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/ziadkadry99/shopdesk/internal/audit"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	Backend    string       `json:"backend"`
	LogEnabled bool         `json:"log_enabled"`
	Questions  *audit.Stats `json:"questions,omitempty"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Backend: d.status.BackendStatus()}

	if d.stats != nil {
		st, err := d.stats.Stats(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp.LogEnabled = true
		resp.Questions = &st
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
