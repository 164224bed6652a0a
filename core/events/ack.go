package events

import "time"

// AckEvent is published for each volunteer acknowledgment or error.
type AckEvent struct {
	RunID        string
	BatchID      string
	VolunteerID  string
	Acknowledged bool
	Err          error
	Latency      time.Duration
}
