package logging

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// ~100KB per record, so 15 records overflow the 1MB limit once.
	rec := sampleRecord("run", "1001", time.Now())
	rec.DonorLocation = strings.Repeat("x", 100*1024)
	for i := 0; i < 15; i++ {
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, err := store.files()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(files), 2, "expected a rotated backup next to the active file")
	assert.Equal(t, path, files[len(files)-1])

	out, err := store.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	assert.Len(t, out, 15)
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Append(context.Background(), sampleRecord("a", "1001", time.Now())))
	require.NoError(t, store.Append(context.Background(), sampleRecord("b", "1002", time.Now())))
	out, err := store.Query(context.Background(), LogQuery{RecipientID: "R2", BatchID: "1002"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].RunID)
}
