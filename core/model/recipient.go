package model

import "fmt"

// Recipient represents an organisation able to absorb food units from a batch.
type Recipient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"` // units it can still absorb
	Urgency  int     `json:"urgency"`  // higher is more urgent
	Distance float64 `json:"distance"` // distance from the donor, lower is nearer
}

// Validate checks that the recipient can take part in an allocation run.
func (r Recipient) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("recipient id is required")
	}
	if r.Capacity < 0 {
		return fmt.Errorf("recipient %s: capacity must not be negative (got %d)", r.ID, r.Capacity)
	}
	return nil
}

// CanReceive returns true while the recipient still has capacity left.
func (r Recipient) CanReceive() bool {
	return r.Capacity > 0
}

// MorePressing reports whether r should be served before o: higher urgency
// first, nearer on equal urgency. Identical keys fall back to the ID so the
// order stays deterministic.
func (r Recipient) MorePressing(o Recipient) bool {
	if r.Urgency != o.Urgency {
		return r.Urgency > o.Urgency
	}
	if r.Distance != o.Distance {
		return r.Distance < o.Distance
	}
	return r.ID < o.ID
}
