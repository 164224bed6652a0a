package allocations

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/mealmatch/core/allocation/logging"
	"github.com/kilianp07/mealmatch/core/model"
)

// NewLogHandler returns an HTTP handler exposing allocation runs via GET /api/allocations/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		params := r.URL.Query()
		q := logging.LogQuery{
			BatchID:     params.Get("batch_id"),
			DonorID:     params.Get("donor_id"),
			RecipientID: params.Get("recipient_id"),
			VolunteerID: params.Get("volunteer_id"),
		}
		if s := params.Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := params.Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		if st := params.Get("status"); st != "" {
			status := model.BatchStatus(st)
			if !status.IsValid() {
				http.Error(w, "unknown status "+st, http.StatusBadRequest)
				return
			}
			q.Status = status
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.LogRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
