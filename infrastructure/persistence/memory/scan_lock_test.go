package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "metadata-scanner/pkg/errors"
)

func TestScanLock_ExclusivePerApp(t *testing.T) {
	ctx := context.Background()
	lock := NewScanLock()

	lease, err := lock.Acquire(ctx, "app1", "run-1", time.Minute)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, "app1", "run-2", time.Minute)
	assert.True(t, pkgerrors.IsConflict(err))

	_, err = lock.Acquire(ctx, "app2", "run-3", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, lease.Release(ctx))
	_, err = lock.Acquire(ctx, "app1", "run-4", time.Minute)
	assert.NoError(t, err)
}

func TestScanLock_ExpiredLockCanBeTaken(t *testing.T) {
	ctx := context.Background()
	lock := NewScanLock()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lock.nowFn = func() time.Time { return now }

	stale, err := lock.Acquire(ctx, "app1", "run-1", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = lock.Acquire(ctx, "app1", "run-2", time.Minute)
	require.NoError(t, err)

	// The stale holder must not release the new owner's lock.
	require.NoError(t, stale.Release(ctx))
	_, err = lock.Acquire(ctx, "app1", "run-3", time.Minute)
	assert.True(t, pkgerrors.IsConflict(err))
}
