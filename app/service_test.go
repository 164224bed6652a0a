package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mealmatch/config"
	"github.com/kilianp07/mealmatch/core/allocation"
	"github.com/kilianp07/mealmatch/core/allocation/logging"
	"github.com/kilianp07/mealmatch/core/model"
)

const fleetYAML = `recipients:
  - {id: R1, name: OldAgeHome, capacity: 10, urgency: 8, distance: 1.2}
  - {id: R2, name: Orphanage, capacity: 8, urgency: 9, distance: 0.8}
  - {id: R3, name: LocalNGO, capacity: 15, urgency: 6, distance: 2.0}
  - {id: R4, name: StreetVendors, capacity: 5, urgency: 7, distance: 0.5}
volunteers:
  - {id: V101, name: VolunteerA, distance: 0.5}
  - {id: V102, name: VolunteerB, distance: 1.0}
  - {id: V103, name: VolunteerC, distance: 2.5}
`

func newTestService(t *testing.T, backend string) *Service {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fleet.yaml"), []byte(fleetYAML), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgData := "fleet_path: fleet.yaml\n" +
		"metrics:\n  sinks:\n    - type: nop\n" +
		"logging:\n  backend: " + backend + "\n  path: " + filepath.Join(dir, "runs.log") + "\n" +
		"api:\n  token: tok\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgData), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	allocation.ResetMetrics(nil)
	t.Cleanup(func() { allocation.ResetMetrics(nil) })
	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceHTTPFlow(t *testing.T) {
	for _, backend := range []string{"jsonl", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			svc := newTestService(t, backend)
			srv := httptest.NewServer(svc.Handler())
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/api/batches", "application/json",
				strings.NewReader(`{"id":"1001","donor_id":"501","quantity":20,"donor_location":"HostelCanteen"}`))
			require.NoError(t, err)
			var res allocation.Result
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, model.BatchAssigned, res.Status)

			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/allocations/logs?batch_id=1001", nil)
			req.Header.Set("Authorization", "Bearer tok")
			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			var recs []logging.LogRecord
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
			resp.Body.Close()
			require.Len(t, recs, 1)
			assert.Equal(t, res.RunID, recs[0].RunID)

			resp, err = http.Get(srv.URL + "/metrics")
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestServiceQueue(t *testing.T) {
	svc := newTestService(t, "jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Manager.Run(ctx, svc.batches)

	require.NoError(t, svc.Enqueue(&model.Batch{ID: "1001", Quantity: 8}))
	require.Eventually(t, func() bool { return len(svc.Manager.History()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "R2", svc.Manager.History()[0].Assignments[0].RecipientID)
}

func TestServiceMissingFleet(t *testing.T) {
	cfg := &config.Config{FleetPath: filepath.Join(t.TempDir(), "missing.yaml")}
	cfg.SetDefaults()
	_, err := New(cfg)
	assert.Error(t, err)
}
