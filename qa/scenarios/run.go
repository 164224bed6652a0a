package scenarios

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mealmatch/core/allocation"
	"github.com/kilianp07/mealmatch/core/store"
	"github.com/kilianp07/mealmatch/infra/logger"
	"github.com/kilianp07/mealmatch/infra/metrics"
	"github.com/kilianp07/mealmatch/infra/mqtt"
	"github.com/kilianp07/mealmatch/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err, "prom sink")

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.FailVolunteers {
		pub.FailIDs[id] = true
	}
	for _, id := range sc.NoAckVolunteers {
		pub.NoAckIDs[id] = true
	}

	recipients := store.NewRecipientStore()
	for _, r := range sc.Recipients {
		recipients.Put(r.ToModel())
	}
	volunteers := store.NewVolunteerStore()
	for _, v := range sc.Volunteers {
		volunteers.Put(v.ToModel())
	}

	mgr, err := allocation.NewManager(allocation.Greedy{}, recipients, volunteers, pub, 10*time.Millisecond, sink, eventbus.New(), logger.NopLogger{})
	require.NoError(t, err, "manager")
	defer func() { _ = mgr.Close() }()

	acked := 0
	for i, def := range sc.Batches {
		res, err := mgr.Process(context.Background(), def.ToModel())
		require.NoError(t, err, "batch %s", def.ID)
		want := sc.Expected.Batches[i]
		assert.Equal(t, want.Status, res.Status.String(), "batch %s status", def.ID)
		assert.Equal(t, want.Remaining, res.Remaining, "batch %s remaining", def.ID)
		require.Len(t, res.Assignments, len(want.Assignments), "batch %s assignments", def.ID)
		for j, a := range res.Assignments {
			exp := want.Assignments[j]
			assert.Equal(t, exp.Volunteer, a.VolunteerID, "batch %s assignment %d volunteer", def.ID, j)
			assert.Equal(t, exp.Recipient, a.RecipientID, "batch %s assignment %d recipient", def.ID, j)
			assert.Equal(t, exp.Quantity, a.Quantity, "batch %s assignment %d quantity", def.ID, j)
		}
		for _, ok := range res.Acknowledged {
			if ok {
				acked++
			}
		}
	}

	for id, want := range sc.Expected.Capacities {
		r, ok := recipients.Get(id)
		require.True(t, ok, "recipient %s", id)
		assert.Equal(t, want, r.Capacity, "recipient %s capacity", id)
	}
	assert.Equal(t, sc.Expected.Acked, acked, "acknowledged deliveries")
}
