package allocations

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/mealmatch/core/model"
)

// ErrQueueFull is returned by an Enqueuer that cannot accept more batches.
var ErrQueueFull = errors.New("batch queue full")

// Enqueuer hands a batch to the allocation goroutine.
type Enqueuer interface {
	Enqueue(batch *model.Batch) error
}

// NewQueueHandler accepts batches via POST /api/batches/queue and returns
// before they are allocated. Results show up in the run log.
func NewQueueHandler(q Enqueuer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var b model.Batch
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			http.Error(w, "invalid batch: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := b.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
		if err := q.Enqueue(&b); err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, ErrQueueFull) {
				code = http.StatusServiceUnavailable
			}
			http.Error(w, err.Error(), code)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": b.ID, "status": "queued"})
	})
}
