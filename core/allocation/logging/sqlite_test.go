package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/mealmatch/core/model"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Now()
	first := sampleRecord("a", "1001", base)
	second := sampleRecord("b", "1002", base.Add(time.Second))
	second.Status = model.BatchPartiallyAssigned
	second.Remaining = 2
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	out, err := store.Query(ctx, LogQuery{VolunteerID: "V101"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].RunID, "records are ordered by time")

	out, err = store.Query(ctx, LogQuery{Status: model.BatchPartiallyAssigned})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Remaining)

	out, err = store.Query(ctx, LogQuery{Start: base.Add(500 * time.Millisecond)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1002", out[0].BatchID)

	out, err = store.Query(ctx, LogQuery{DonorID: "999"})
	require.NoError(t, err)
	assert.Empty(t, out)
}
