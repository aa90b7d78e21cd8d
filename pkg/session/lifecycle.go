package session

import (
	"context"
	"log"
	"time"

	"Tray-Validation-Backend/domain"
)

// Guard keeps a working session's server lease alive and releases it when the
// process goes away. It runs two timers: a heartbeat (refreshes the lease) and
// an idleness watcher (flags the session expired after the idle timeout, as a
// UX signal only — the backend remains the arbiter of lease expiry).
type Guard struct {
	s    *ValidationSession
	stop chan struct{}
	done chan struct{}
}

// NewGuard starts the timers. Read-only sessions get no guard work at all;
// a Guard is still returned so callers can Stop unconditionally.
func NewGuard(s *ValidationSession) *Guard {
	g := &Guard{
		s:    s,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	if s.ReadOnly() {
		close(g.done)
		return g
	}
	go g.run()
	return g
}

func (g *Guard) run() {
	defer close(g.done)
	heartbeat := time.NewTicker(g.s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	expiry := time.NewTicker(g.s.cfg.ExpiryCheckInterval)
	defer expiry.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-heartbeat.C:
			g.beat()
		case <-expiry.C:
			g.checkExpiry()
		}
	}
}

func (g *Guard) beat() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.s.backend.Heartbeat(ctx, g.s.WorkLogID()); err != nil {
		log.Printf("[session] heartbeat failed: %v", err)
		return
	}
	g.s.mu.Lock()
	g.s.markActivityLocked()
	g.s.mu.Unlock()
}

// checkExpiry runs on its own clock, independent of whether heartbeats
// succeed: a dead network must still surface as an expired session.
func (g *Guard) checkExpiry() {
	g.s.mu.Lock()
	idle := g.s.now().Sub(g.s.lastActivity)
	wasExpired := g.s.expired
	if idle > g.s.cfg.IdleTimeout {
		g.s.expired = true
	}
	nowExpired := g.s.expired
	g.s.mu.Unlock()
	if nowExpired && !wasExpired {
		log.Printf("[session] work log %d idle for %s, flagging session expired", g.s.WorkLogID(), idle)
		g.s.notify()
	}
}

// Stop halts the timers and, for a non-read-only session still in a
// non-terminal state, abandons the assignment so the lease is not held
// indefinitely. Call it on every in-app teardown path.
func (g *Guard) Stop(ctx context.Context) {
	select {
	case <-g.stop:
	default:
		close(g.stop)
	}
	<-g.done

	if g.s.ReadOnly() {
		return
	}
	wl := g.s.WorkLog()
	if wl == nil || wl.Status == domain.WorkLogStatusCompleted || wl.Status == domain.WorkLogStatusAbandoned {
		return
	}
	if err := g.s.AbandonValidation(ctx); err != nil {
		log.Printf("[session] abandon on teardown failed: %v", err)
	}
}

// ReleaseBeacon fires a best-effort, non-blocking abandon, the analogue of a
// page-unload beacon: it must be dispatched even as the process is torn down,
// and nobody waits for the answer. Pending edits are deliberately not flushed.
func (g *Guard) ReleaseBeacon() {
	if g.s.ReadOnly() {
		return
	}
	workLogID := g.s.WorkLogID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.s.backend.Abandon(ctx, workLogID); err != nil {
			log.Printf("[session] release beacon for work log %d failed: %v", workLogID, err)
		}
	}()
}
