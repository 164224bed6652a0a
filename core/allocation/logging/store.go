package logging

import (
	"context"
	"time"

	"github.com/kilianp07/mealmatch/core/model"
)

// LogRecord captures one allocation run and its delivery results.
type LogRecord struct {
	RunID         string             `json:"run_id"`
	Timestamp     time.Time          `json:"timestamp"`
	BatchID       string             `json:"batch_id"`
	DonorID       string             `json:"donor_id"`
	DonorLocation string             `json:"donor_location,omitempty"`
	Original      int                `json:"original_quantity"`
	Remaining     int                `json:"remaining_quantity"`
	Status        model.BatchStatus  `json:"status"`
	Reason        string             `json:"reason"`
	Assignments   []model.Assignment `json:"assignments"`
	Acknowledged  map[string]bool    `json:"acknowledged,omitempty"`
	Errors        map[string]string  `json:"errors,omitempty"`
}

// LogQuery defines filters for retrieving records. Zero values match everything.
type LogQuery struct {
	Start       time.Time
	End         time.Time
	BatchID     string
	DonorID     string
	RecipientID string
	VolunteerID string
	Status      model.BatchStatus
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Match reports whether r satisfies every filter set in q.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.BatchID != "" && r.BatchID != q.BatchID {
		return false
	}
	if q.DonorID != "" && r.DonorID != q.DonorID {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.RecipientID == "" && q.VolunteerID == "" {
		return true
	}
	for _, a := range r.Assignments {
		if q.RecipientID != "" && a.RecipientID != q.RecipientID {
			continue
		}
		if q.VolunteerID != "" && a.VolunteerID != q.VolunteerID {
			continue
		}
		return true
	}
	return false
}
