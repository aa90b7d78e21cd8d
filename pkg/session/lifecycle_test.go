package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Tray-Validation-Backend/domain"
)

func TestGuardHeartbeats(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{
		HeartbeatInterval:   10 * time.Millisecond,
		ExpiryCheckInterval: time.Hour,
	})

	g := NewGuard(s)
	defer g.Stop(context.Background())

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.heartbeatCalls >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestGuardStopAbandonsActiveSession(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{
		HeartbeatInterval:   time.Hour,
		ExpiryCheckInterval: time.Hour,
	})

	g := NewGuard(s)
	g.Stop(context.Background())

	assert.Equal(t, 1, b.abandonCalls)
	assert.Equal(t, domain.WorkLogStatusAbandoned, s.WorkLog().Status)
}

func TestGuardStopLeavesCompletedSessionAlone(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{
		HeartbeatInterval:   time.Hour,
		ExpiryCheckInterval: time.Hour,
	})
	s.WorkLog().Status = domain.WorkLogStatusCompleted

	g := NewGuard(s)
	g.Stop(context.Background())

	assert.Equal(t, 0, b.abandonCalls)
}

func TestGuardDoesNothingForReadOnlySession(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{
		ReadOnly:            true,
		HeartbeatInterval:   time.Millisecond,
		ExpiryCheckInterval: time.Millisecond,
	})

	g := NewGuard(s)
	time.Sleep(20 * time.Millisecond)
	g.Stop(context.Background())

	assert.Equal(t, 0, b.heartbeatCalls)
	assert.Equal(t, 0, b.abandonCalls)
}

func TestGuardFlagsExpiredSession(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{
		HeartbeatInterval:   time.Hour, // keep heartbeats out of the way
		ExpiryCheckInterval: 5 * time.Millisecond,
		IdleTimeout:         30 * time.Minute,
	})

	// pretend the last confirmed activity happened 31 minutes ago
	s.mu.Lock()
	s.lastActivity = time.Now().Add(-31 * time.Minute)
	s.mu.Unlock()

	g := NewGuard(s)
	defer g.Stop(context.Background())

	require.Eventually(t, s.Expired, time.Second, 5*time.Millisecond,
		"idle session must be flagged expired independent of heartbeat success")
}

func TestReleaseBeaconFiresAbandon(t *testing.T) {
	b := &stubBackend{}
	s := newTestSession(t, b, Config{
		HeartbeatInterval:   time.Hour,
		ExpiryCheckInterval: time.Hour,
	})

	g := NewGuard(s)
	g.ReleaseBeacon()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.abandonCalls == 1
	}, time.Second, 5*time.Millisecond)

	// beacon bypasses the session state machine: local status is untouched
	assert.Equal(t, domain.WorkLogStatusActive, s.WorkLog().Status)
	_ = g
}
