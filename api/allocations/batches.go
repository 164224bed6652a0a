package allocations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/mealmatch/core/allocation"
	"github.com/kilianp07/mealmatch/core/model"
)

// Processor allocates a single batch.
type Processor interface {
	Process(ctx context.Context, batch *model.Batch) (allocation.Result, error)
}

// maxBatchBody bounds the size of a submitted batch.
const maxBatchBody = 1 << 16

// NewBatchHandler returns an HTTP handler accepting batches via POST /api/batches.
// The batch is allocated before the response is written.
func NewBatchHandler(p Processor) http.Handler {
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
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
		res, err := p.Process(r.Context(), &b)
		switch {
		case errors.Is(err, allocation.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}
