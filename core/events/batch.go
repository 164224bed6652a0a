package events

import "github.com/kilianp07/mealmatch/core/model"

// BatchEvent is published when a batch enters an allocation run.
type BatchEvent struct {
	RunID string
	Batch model.Batch
}

// AssignmentEvent is published for every assignment, in allocation order.
type AssignmentEvent struct {
	RunID      string
	Assignment model.Assignment
}

// PendingEvent is published when a run leaves part of the batch unassigned.
// Reason is "volunteers_exhausted" or "recipients_exhausted".
type PendingEvent struct {
	RunID     string
	BatchID   string
	Remaining int
	Reason    string
}
