package allocation

import (
	"fmt"

	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/store"
)

// StopReason explains why an allocation run ended.
type StopReason string

const (
	// StopFilled means every unit of the batch was allocated.
	StopFilled StopReason = "filled"
	// StopVolunteersExhausted means recipients were still waiting but no
	// volunteer was left to carry the units. The remainder is pending.
	StopVolunteersExhausted StopReason = "volunteers_exhausted"
	// StopRecipientsExhausted means no recipient had capacity left.
	StopRecipientsExhausted StopReason = "recipients_exhausted"
)

func (r StopReason) String() string { return string(r) }

// Outcome is the result of one allocation run.
type Outcome struct {
	Assignments []model.Assignment
	Original    int
	Remaining   int
	Reason      StopReason
}

// Allocated returns the number of units handed out.
func (o Outcome) Allocated() int { return o.Original - o.Remaining }

// Pending reports whether units of the batch are left over.
func (o Outcome) Pending() bool { return o.Remaining > 0 }

// Status derives the batch status reached by the run.
func (o Outcome) Status() model.BatchStatus { return model.StatusOf(o.Original, o.Remaining) }

// Allocator splits a batch across recipients using the available volunteers.
// Implementations mutate the batch and both stores in place.
type Allocator interface {
	Run(batch *model.Batch, recipients *store.RecipientStore, volunteers *store.VolunteerStore) (Outcome, error)
}

// Greedy serves the most urgent recipient first (nearest on ties) and hands
// each delivery to the nearest available volunteer. Every volunteer makes a
// single trip per run.
type Greedy struct{}

// Allocate runs the greedy allocator and returns the assignments in the order
// they were made.
func Allocate(batch *model.Batch, recipients *store.RecipientStore, volunteers *store.VolunteerStore) ([]model.Assignment, error) {
	out, err := Greedy{}.Run(batch, recipients, volunteers)
	if err != nil {
		return nil, err
	}
	return out.Assignments, nil
}

// Run implements Allocator.
func (Greedy) Run(batch *model.Batch, recipients *store.RecipientStore, volunteers *store.VolunteerStore) (Outcome, error) {
	if batch == nil || recipients == nil || volunteers == nil {
		return Outcome{}, fmt.Errorf("%w: batch and stores are required", ErrInvalidArgument)
	}
	if err := batch.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	recs := recipients.List()
	open := recs[:0]
	for _, r := range recs {
		if err := r.Validate(); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if r.CanReceive() {
			open = append(open, r)
		}
	}
	var free []model.Volunteer
	for _, v := range volunteers.List() {
		if err := v.Validate(); err != nil {
			return Outcome{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if v.Available {
			free = append(free, v)
		}
	}

	rq := newQueue(open, model.Recipient.MorePressing)
	vq := newQueue(free, model.Volunteer.Nearer)

	out := Outcome{Original: batch.Quantity, Remaining: batch.Quantity, Reason: StopRecipientsExhausted}
	for out.Remaining > 0 && rq.Len() > 0 {
		rec := rq.pop()
		give := min(out.Remaining, rec.Capacity)
		if vq.Len() == 0 {
			out.Reason = StopVolunteersExhausted
			break
		}
		vol := vq.pop()

		updated, err := recipients.Consume(rec.ID, give)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrStoreChanged, err)
		}
		if err := volunteers.MarkUnavailable(vol.ID); err != nil {
			return out, fmt.Errorf("%w: %v", ErrStoreChanged, err)
		}
		out.Assignments = append(out.Assignments, model.Assignment{
			BatchID:     batch.ID,
			VolunteerID: vol.ID,
			RecipientID: rec.ID,
			Quantity:    give,
		})
		out.Remaining -= give
		if updated.CanReceive() {
			rq.push(updated)
		}
	}

	if out.Remaining == 0 {
		out.Reason = StopFilled
		batch.Assigned = true
		batch.Quantity = 0
	} else {
		batch.Quantity = out.Remaining
	}
	return out, nil
}
