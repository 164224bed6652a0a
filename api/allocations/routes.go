package allocations

import (
	"net/http"

	"github.com/kilianp07/mealmatch/core/allocation/logging"
	"github.com/kilianp07/mealmatch/core/store"
)

// Deps groups what the HTTP routes need.
type Deps struct {
	Processor  Processor
	Queue      Enqueuer
	Recipients *store.RecipientStore
	Volunteers *store.VolunteerStore
	Logs       logging.LogStore
	Token      string
}

// Register mounts the allocation routes on mux. Routes whose dependency is nil
// are skipped.
func Register(mux *http.ServeMux, d Deps) {
	if d.Processor != nil {
		mux.Handle("/api/batches", NewBatchHandler(d.Processor))
	}
	if d.Queue != nil {
		mux.Handle("/api/batches/queue", NewQueueHandler(d.Queue))
	}
	if d.Logs != nil {
		mux.Handle("/api/allocations/logs", NewLogHandler(d.Logs, d.Token))
	}
	if d.Recipients != nil {
		mux.Handle("/api/recipients", NewRecipientsHandler(d.Recipients))
	}
	if d.Volunteers != nil {
		mux.Handle("/api/volunteers", NewVolunteersHandler(d.Volunteers))
	}
}
