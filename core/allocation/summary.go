package allocation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/mealmatch/core/store"
)

// Summary aggregates an Outcome for reporting.
type Summary struct {
	Allocated  int     `json:"allocated"`
	Remaining  int     `json:"remaining"`
	FillRatio  float64 `json:"fill_ratio"`
	Recipients int     `json:"recipients"`
	Volunteers int     `json:"volunteers"`
	// MeanQuantity is the average number of units per delivery.
	MeanQuantity float64 `json:"mean_quantity"`
	// WeightedUrgency is the mean recipient urgency weighted by units received.
	WeightedUrgency float64 `json:"weighted_urgency"`
}

// Summarize computes delivery statistics. Recipient urgencies are looked up in
// recipients; unknown recipients count with urgency zero.
func Summarize(out Outcome, recipients *store.RecipientStore) Summary {
	qty := make([]float64, len(out.Assignments))
	urg := make([]float64, len(out.Assignments))
	seen := make(map[string]struct{}, len(out.Assignments))
	for i, a := range out.Assignments {
		qty[i] = float64(a.Quantity)
		seen[a.RecipientID] = struct{}{}
		if recipients == nil {
			continue
		}
		if r, ok := recipients.Get(a.RecipientID); ok {
			urg[i] = float64(r.Urgency)
		}
	}
	s := Summary{
		Allocated:  int(floats.Sum(qty)),
		Remaining:  out.Remaining,
		Recipients: len(seen),
		Volunteers: len(out.Assignments),
	}
	if out.Original > 0 {
		s.FillRatio = float64(s.Allocated) / float64(out.Original)
	}
	if len(qty) > 0 {
		s.MeanQuantity = stat.Mean(qty, nil)
		s.WeightedUrgency = stat.Mean(urg, qty)
	}
	return s
}
