package memory

import (
	"context"
	"sync"
	"time"

	"metadata-scanner/application/ports"
	pkgerrors "metadata-scanner/pkg/errors"
)

// ScanLock is a process-local scan lock for single-instance deployments.
type ScanLock struct {
	mu    sync.Mutex
	held  map[string]heldLock
	nowFn func() time.Time
}

type heldLock struct {
	owner     string
	expiresAt time.Time
}

func NewScanLock() *ScanLock {
	return &ScanLock{
		held:  make(map[string]heldLock),
		nowFn: time.Now,
	}
}

func (l *ScanLock) Acquire(ctx context.Context, appID, owner string, ttl time.Duration) (ports.ScanLease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if cur, ok := l.held[appID]; ok && cur.expiresAt.After(now) {
		return nil, pkgerrors.NewConflictError("scan already running for app " + appID)
	}
	l.held[appID] = heldLock{owner: owner, expiresAt: now.Add(ttl)}
	return &lease{lock: l, appID: appID, owner: owner}, nil
}

type lease struct {
	lock  *ScanLock
	appID string
	owner string
}

func (r *lease) Release(ctx context.Context) error {
	r.lock.mu.Lock()
	defer r.lock.mu.Unlock()
	if cur, ok := r.lock.held[r.appID]; ok && cur.owner == r.owner {
		delete(r.lock.held, r.appID)
	}
	return nil
}
