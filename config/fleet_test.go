package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoFleet = `recipients:
  - {id: R1, name: OldAgeHome, capacity: 10, urgency: 8, distance: 1.2}
  - {id: R2, name: Orphanage, capacity: 8, urgency: 9, distance: 0.8}
volunteers:
  - {id: V101, name: VolunteerA, distance: 0.5}
  - {id: V102, name: VolunteerB, distance: 1.0, available: false}
batch:
  id: "1001"
  donor_id: "501"
  quantity: 20
  donor_location: HostelCanteen
`

func TestLoadFleet(t *testing.T) {
	f, err := LoadFleet(writeFile(t, "fleet.yaml", demoFleet))
	require.NoError(t, err)

	require.Len(t, f.Recipients, 2)
	assert.Equal(t, "Orphanage", f.Recipients[1].Name)
	assert.InDelta(t, 1.2, f.Recipients[0].Distance, 1e-9)
	require.Len(t, f.Volunteers, 2)
	assert.True(t, f.Volunteers[0].Available, "available by default")
	assert.False(t, f.Volunteers[1].Available)
	require.NotNil(t, f.Batch)
	assert.Equal(t, 20, f.Batch.Quantity)
	assert.Equal(t, "HostelCanteen", f.Batch.DonorLocation)

	rs, vs := f.Populate()
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, 1, vs.Available())
}

func TestLoadFleetJSON(t *testing.T) {
	f, err := LoadFleet(writeFile(t, "fleet.json", `{"recipients":[{"id":"R1","capacity":3}],"volunteers":[]}`))
	require.NoError(t, err)
	assert.Len(t, f.Recipients, 1)
	assert.Nil(t, f.Batch)
}

func TestLoadFleetInvalid(t *testing.T) {
	cases := map[string]string{
		"negative capacity":    "recipients:\n  - {id: R1, capacity: -1}\n",
		"duplicate recipient":  "recipients:\n  - {id: R1}\n  - {id: R1}\n",
		"missing volunteer id": "volunteers:\n  - {name: x}\n",
		"duplicate volunteer":  "volunteers:\n  - {id: V1}\n  - {id: V1}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFleet(writeFile(t, "fleet.yaml", data))
			assert.Error(t, err)
		})
	}
}
