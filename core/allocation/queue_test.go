package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/mealmatch/core/model"
)

func TestQueueOrdersRecipients(t *testing.T) {
	q := newQueue([]model.Recipient{
		{ID: "c", Urgency: 1, Distance: 1},
		{ID: "b", Urgency: 5, Distance: 3},
		{ID: "a", Urgency: 5, Distance: 2},
		{ID: "d", Urgency: 5, Distance: 2},
	}, model.Recipient.MorePressing)

	var got []string
	for q.Len() > 0 {
		got = append(got, q.pop().ID)
	}
	assert.Equal(t, []string{"a", "d", "b", "c"}, got)
}

func TestQueuePushUpdatedValue(t *testing.T) {
	q := newQueue([]model.Volunteer{
		{ID: "v1", Distance: 3},
		{ID: "v2", Distance: 1},
	}, model.Volunteer.Nearer)

	v := q.pop()
	assert.Equal(t, "v2", v.ID)
	v.Distance = 5
	q.push(v)
	q.push(model.Volunteer{ID: "v0", Distance: 0.5})

	assert.Equal(t, "v0", q.pop().ID)
	assert.Equal(t, "v1", q.pop().ID)
	assert.Equal(t, "v2", q.pop().ID)
	assert.Equal(t, 0, q.Len())
}
