package allocations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mealmatch/core/model"
)

func TestStoreHandlers(t *testing.T) {
	mgr := demoManager(t)
	_, err := mgr.Process(context.Background(), &model.Batch{ID: "1001", Quantity: 20})
	require.NoError(t, err)

	mux := http.NewServeMux()
	Register(mux, Deps{Processor: mgr, Recipients: mgr.Recipients(), Volunteers: mgr.Volunteers(), Logs: &memStore{}})

	get := func(url string, out any) {
		t.Helper()
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}

	var recs []model.Recipient
	get("/api/recipients", &recs)
	require.Len(t, recs, 4)
	assert.Equal(t, []int{0, 0, 15, 3}, []int{recs[0].Capacity, recs[1].Capacity, recs[2].Capacity, recs[3].Capacity})

	get("/api/recipients?open=true", &recs)
	require.Len(t, recs, 2)
	assert.Equal(t, "R3", recs[0].ID)

	var vols []model.Volunteer
	get("/api/volunteers", &vols)
	assert.Len(t, vols, 3)
	get("/api/volunteers?available=true", &vols)
	assert.Empty(t, vols)
}
