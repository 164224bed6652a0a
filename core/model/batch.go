package model

import (
	"fmt"
	"time"
)

// BatchStatus describes how much of a batch has been handed out.
type BatchStatus string

const (
	BatchUnassigned        BatchStatus = "unassigned"
	BatchPartiallyAssigned BatchStatus = "partially_assigned"
	BatchAssigned          BatchStatus = "assigned"
)

func (s BatchStatus) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchUnassigned, BatchPartiallyAssigned, BatchAssigned:
		return true
	}
	return false
}

// StatusOf derives the batch status from its quantity before and after a run.
func StatusOf(original, remaining int) BatchStatus {
	switch {
	case remaining == 0:
		return BatchAssigned
	case remaining >= original:
		return BatchUnassigned
	default:
		return BatchPartiallyAssigned
	}
}

// Batch is a donation of food units waiting to be distributed.
// Quantity is decremented in place as units are allocated.
type Batch struct {
	ID            string    `json:"id"`
	DonorID       string    `json:"donor_id"`
	Quantity      int       `json:"quantity"`
	DonorLocation string    `json:"donor_location"`
	CreatedAt     time.Time `json:"created_at"`
	Assigned      bool      `json:"assigned"`
}

// Validate checks that the batch can be allocated.
func (b Batch) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("batch id is required")
	}
	if b.Quantity <= 0 {
		return fmt.Errorf("batch %s: quantity must be positive (got %d)", b.ID, b.Quantity)
	}
	if b.Assigned {
		return fmt.Errorf("batch %s: already assigned", b.ID)
	}
	return nil
}
