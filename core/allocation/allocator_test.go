package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mealmatch/core/model"
	"github.com/kilianp07/mealmatch/core/store"
)

func demoRecipients() *store.RecipientStore {
	return store.NewRecipientStore(
		model.Recipient{ID: "R1", Name: "OldAgeHome", Capacity: 10, Urgency: 8, Distance: 1.2},
		model.Recipient{ID: "R2", Name: "Orphanage", Capacity: 8, Urgency: 9, Distance: 0.8},
		model.Recipient{ID: "R3", Name: "LocalNGO", Capacity: 15, Urgency: 6, Distance: 2.0},
		model.Recipient{ID: "R4", Name: "StreetVendors", Capacity: 5, Urgency: 7, Distance: 0.5},
	)
}

func demoVolunteers(n int) *store.VolunteerStore {
	all := []model.Volunteer{
		{ID: "V101", Name: "VolunteerA", Distance: 0.5, Available: true},
		{ID: "V102", Name: "VolunteerB", Distance: 1.0, Available: true},
		{ID: "V103", Name: "VolunteerC", Distance: 2.5, Available: true},
	}
	return store.NewVolunteerStore(all[:n]...)
}

func demoBatch(qty int) *model.Batch {
	return &model.Batch{ID: "1001", DonorID: "501", Quantity: qty, DonorLocation: "HostelCanteen"}
}

func capacity(t *testing.T, rs *store.RecipientStore, id string) int {
	t.Helper()
	r, ok := rs.Get(id)
	require.True(t, ok, "recipient %s", id)
	return r.Capacity
}

func TestAllocateDemoBatch(t *testing.T) {
	rs, vs := demoRecipients(), demoVolunteers(3)
	b := demoBatch(20)

	got, err := Allocate(b, rs, vs)
	require.NoError(t, err)

	assert.Equal(t, []model.Assignment{
		{BatchID: "1001", VolunteerID: "V101", RecipientID: "R2", Quantity: 8},
		{BatchID: "1001", VolunteerID: "V102", RecipientID: "R1", Quantity: 10},
		{BatchID: "1001", VolunteerID: "V103", RecipientID: "R4", Quantity: 2},
	}, got)
	assert.True(t, b.Assigned)
	assert.Equal(t, 0, b.Quantity)
	assert.Equal(t, 0, capacity(t, rs, "R1"))
	assert.Equal(t, 0, capacity(t, rs, "R2"))
	assert.Equal(t, 15, capacity(t, rs, "R3"))
	assert.Equal(t, 3, capacity(t, rs, "R4"))
	assert.Equal(t, 0, vs.Available())
}

func TestAllocateTwoVolunteersLeavesPending(t *testing.T) {
	rs, vs := demoRecipients(), demoVolunteers(2)
	b := demoBatch(20)

	out, err := Greedy{}.Run(b, rs, vs)
	require.NoError(t, err)

	require.Len(t, out.Assignments, 2)
	assert.Equal(t, "R2", out.Assignments[0].RecipientID)
	assert.Equal(t, "R1", out.Assignments[1].RecipientID)
	assert.Equal(t, 2, out.Remaining)
	assert.Equal(t, StopVolunteersExhausted, out.Reason)
	assert.Equal(t, model.BatchPartiallyAssigned, out.Status())
	assert.True(t, out.Pending())
	assert.False(t, b.Assigned)
	assert.Equal(t, 2, b.Quantity)
	assert.Equal(t, 5, capacity(t, rs, "R4"), "R4 is popped but not served")
}

func TestAllocateNoCapacity(t *testing.T) {
	rs := store.NewRecipientStore(
		model.Recipient{ID: "R1", Capacity: 0, Urgency: 8},
		model.Recipient{ID: "R2", Capacity: 0, Urgency: 9},
	)
	vs := demoVolunteers(3)
	b := demoBatch(20)

	got, err := Allocate(b, rs, vs)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 20, b.Quantity)
	assert.False(t, b.Assigned)
	assert.Equal(t, 3, vs.Available())
}

func TestAllocateNoVolunteers(t *testing.T) {
	rs, vs := demoRecipients(), store.NewVolunteerStore()
	b := demoBatch(20)

	out, err := Greedy{}.Run(b, rs, vs)
	require.NoError(t, err)
	assert.Empty(t, out.Assignments)
	assert.Equal(t, StopVolunteersExhausted, out.Reason)
	assert.Equal(t, model.BatchUnassigned, out.Status())
	assert.Equal(t, 20, b.Quantity)
	assert.Equal(t, 8, capacity(t, rs, "R2"))
}

func TestAllocateSkipsUnavailableVolunteers(t *testing.T) {
	rs := demoRecipients()
	vs := demoVolunteers(3)
	require.NoError(t, vs.SetAvailable("V101", false))

	got, err := Allocate(demoBatch(8), rs, vs)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "V102", got[0].VolunteerID)
}

func TestAllocateOversizedBatch(t *testing.T) {
	rs := store.NewRecipientStore(model.Recipient{ID: "R1", Capacity: 4, Urgency: 1})
	vs := demoVolunteers(3)
	b := demoBatch(10)

	out, err := Greedy{}.Run(b, rs, vs)
	require.NoError(t, err)
	require.Len(t, out.Assignments, 1)
	assert.Equal(t, 4, out.Assignments[0].Quantity)
	assert.Equal(t, StopRecipientsExhausted, out.Reason)
	assert.Equal(t, 6, b.Quantity)
	assert.Equal(t, 2, vs.Available())
}

func TestAllocateRepushesRecipientWithCapacity(t *testing.T) {
	rs := store.NewRecipientStore(
		model.Recipient{ID: "R1", Capacity: 30, Urgency: 9, Distance: 1},
		model.Recipient{ID: "R2", Capacity: 5, Urgency: 2, Distance: 1},
	)
	vs := demoVolunteers(3)
	b := demoBatch(12)

	got, err := Allocate(b, rs, vs)
	require.NoError(t, err)
	require.Len(t, got, 1, "a single trip covers the whole batch")
	assert.Equal(t, 12, got[0].Quantity)
	assert.Equal(t, 18, capacity(t, rs, "R1"))
}

func TestAllocateRejectsVolunteerWithoutID(t *testing.T) {
	rs := demoRecipients()
	vs := demoVolunteers(3)
	vs.Put(model.Volunteer{Name: "Anonymous", Distance: 0.1, Available: true})
	before := rs.List()
	b := demoBatch(20)

	got, err := Allocate(b, rs, vs)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, got)
	assert.Equal(t, before, rs.List())
	assert.Equal(t, 4, vs.Available())
	assert.Equal(t, 20, b.Quantity)
	assert.False(t, b.Assigned)
}

func TestAllocateInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		batch *model.Batch
		recs  []model.Recipient
	}{
		{"negative quantity", demoBatch(-3), nil},
		{"zero quantity", demoBatch(0), nil},
		{"empty batch id", &model.Batch{Quantity: 5}, nil},
		{"already assigned", &model.Batch{ID: "b", Quantity: 5, Assigned: true}, nil},
		{"negative capacity", demoBatch(5), []model.Recipient{{ID: "Rx", Capacity: -1, Urgency: 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := demoRecipients()
			for _, r := range tt.recs {
				rs.Put(r)
			}
			vs := demoVolunteers(3)
			before := rs.List()
			orig := *tt.batch

			got, err := Allocate(tt.batch, rs, vs)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, got)
			assert.Equal(t, before, rs.List())
			assert.Equal(t, 3, vs.Available())
			assert.Equal(t, orig, *tt.batch)
		})
	}
}

func TestAllocateNilInputs(t *testing.T) {
	_, err := Allocate(nil, demoRecipients(), demoVolunteers(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Allocate(demoBatch(1), nil, demoVolunteers(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = Allocate(demoBatch(1), demoRecipients(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// fleet builds a deterministic pseudo random fleet for property checks.
func fleet(seed, nr, nv int) ([]model.Recipient, []model.Volunteer) {
	x := uint32(seed*2654435761 + 1)
	next := func(n int) int {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		return int(x % uint32(n))
	}
	rs := make([]model.Recipient, nr)
	for i := range rs {
		rs[i] = model.Recipient{
			ID:       string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Capacity: next(12),
			Urgency:  next(5),
			Distance: float64(next(40)) / 10,
		}
	}
	vs := make([]model.Volunteer, nv)
	for i := range vs {
		vs[i] = model.Volunteer{
			ID:        "v" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Distance:  float64(next(40)) / 10,
			Available: next(4) != 0,
		}
	}
	return rs, vs
}

func TestAllocateProperties(t *testing.T) {
	for seed := 1; seed <= 40; seed++ {
		recs, vols := fleet(seed, 1+seed%9, seed%7)
		rs := store.NewRecipientStore(recs...)
		vs := store.NewVolunteerStore(vols...)
		qty := 1 + (seed*7)%45
		b := demoBatch(qty)

		before := map[string]model.Recipient{}
		for _, r := range recs {
			before[r.ID] = r
		}
		volDist := map[string]float64{}
		for _, v := range vols {
			volDist[v.ID] = v.Distance
		}

		out, err := Greedy{}.Run(b, rs, vs)
		require.NoError(t, err, "seed %d", seed)

		sum := 0
		given := map[string]int{}
		usedVol := map[string]bool{}
		for i, a := range out.Assignments {
			assert.Positive(t, a.Quantity, "seed %d", seed)
			sum += a.Quantity
			given[a.RecipientID] += a.Quantity
			assert.False(t, usedVol[a.VolunteerID], "seed %d: volunteer %s reused", seed, a.VolunteerID)
			usedVol[a.VolunteerID] = true
			if i > 0 {
				prev := out.Assignments[i-1]
				assert.LessOrEqual(t, volDist[prev.VolunteerID], volDist[a.VolunteerID],
					"seed %d: volunteers in distance order", seed)
			}
		}
		var visits []string
		for _, a := range out.Assignments {
			if first(out.Assignments, a.RecipientID) == len(visits) {
				visits = append(visits, a.RecipientID)
			}
		}
		for i := 1; i < len(visits); i++ {
			p, c := before[visits[i-1]], before[visits[i]]
			assert.False(t, c.MorePressing(p), "seed %d: %s visited before %s", seed, p.ID, c.ID)
		}
		assert.Equal(t, qty, sum+out.Remaining, "seed %d: conservation", seed)
		assert.Equal(t, out.Remaining, b.Quantity, "seed %d", seed)
		assert.Equal(t, out.Remaining == 0, b.Assigned, "seed %d", seed)

		for id, r := range before {
			now := capacity(t, rs, id)
			assert.GreaterOrEqual(t, now, 0)
			assert.Equal(t, r.Capacity-given[id], now, "seed %d: capacity of %s", seed, id)
		}
		for id := range usedVol {
			v, ok := vs.Get(id)
			require.True(t, ok)
			assert.False(t, v.Available, "seed %d", seed)
		}
	}
}

func first(as []model.Assignment, recipient string) int {
	for i, a := range as {
		if a.RecipientID == recipient {
			return i
		}
	}
	return -1
}
