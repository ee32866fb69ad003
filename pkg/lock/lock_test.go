package lock

import (
	"context"
	"testing"
	"time"
)

func TestBackoffStaysWithinJitterWindow(t *testing.T) {
	c := &mongoLockClient{
		retryDelay:  200 * time.Millisecond,
		retryJitter: 100 * time.Millisecond,
	}

	for i := 0; i < 100; i++ {
		d := c.backoff()
		if d < 200*time.Millisecond || d >= 300*time.Millisecond {
			t.Fatalf("backoff %v outside [200ms, 300ms)", d)
		}
	}
}

func TestBackoffWithoutJitter(t *testing.T) {
	c := &mongoLockClient{retryDelay: 50 * time.Millisecond}
	if d := c.backoff(); d != 50*time.Millisecond {
		t.Errorf("expected fixed 50ms backoff, got %v", d)
	}
}

func TestReleaseOnNilLeaseIsNoOp(t *testing.T) {
	var l *Lease
	// Must not panic: release is called on error paths where acquisition
	// may have failed.
	l.Release(context.Background())

	empty := &Lease{}
	empty.Release(context.Background())
}
