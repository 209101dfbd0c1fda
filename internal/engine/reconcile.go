package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/muurk/fanlink/internal/device"
	"github.com/muurk/fanlink/internal/logging"
)

var (
	errGuardHeld   = errors.New("engine: guard held")
	errPrimeFailed = errors.New("engine: initial status fetch failed")
)

// run is the body of the reconciliation loop goroutine. Each tick evaluates
// the desired/confirmed diff from scratch; ticks that arrive while a command
// is in flight are dropped, not queued.
func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	e.prime(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.reconcileOnce()
		}
	}
}

// prime populates the confirmed state with an initial status fetch, retried
// under exponential backoff until the device answers or the engine stops.
// Until it succeeds, confirmed remains the neutral off state and the loop
// simply keeps retrying on its regular cadence.
func (e *Engine) prime(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // retry until the engine stops

	err := backoff.Retry(func() error {
		e.mu.Lock()
		if e.inFlight {
			e.mu.Unlock()
			return errGuardHeld
		}
		e.inFlight = true
		e.mu.Unlock()
		defer e.releaseGuard()

		if !e.fetchStatus(ctx) {
			return errPrimeFailed
		}
		return nil
	}, backoff.WithContext(b, ctx))

	if err == nil {
		logging.Info("Initial device status primed",
			zap.String("state", e.Confirmed().String()))
	}
}

// nextCommand computes the single field to command this tick, in fixed
// priority order: speed first (speed subsumes power: speed 0 means off,
// speed > 0 means on, so power never commands independently), then swing.
// Returns ok=false when desired and confirmed agree on every commandable
// field, which is the steady state.
func nextCommand(desired, confirmed device.State) (field device.Field, value int, ok bool) {
	if desired.Speed != confirmed.Speed {
		return device.FieldSpeed, desired.Speed, true
	}
	if desired.Swing != confirmed.Swing {
		return device.FieldSwing, desired.Swing, true
	}
	return 0, 0, false
}

// reconcileOnce performs one reconciliation tick: diff, at most one command,
// state update. Safe to call from the loop goroutine only.
func (e *Engine) reconcileOnce() {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return
	}
	field, value, ok := nextCommand(e.desired, e.confirmed)
	if !ok {
		e.mu.Unlock()
		return
	}
	e.inFlight = true
	e.mu.Unlock()

	defer e.releaseGuard()

	logging.Info("Issuing command",
		zap.String("field", field.String()),
		zap.Int("value", value),
	)

	// The request carries its own timeout; the engine context is
	// deliberately not threaded through so a Stop lets the round-trip
	// finish or time out naturally.
	reported, err := e.client.Command(context.Background(), field, value)
	if err != nil {
		// Neither state record moves; the next tick retries the same
		// diff.
		logging.Warn("Command failed",
			zap.String("field", field.String()),
			zap.Int("value", value),
			zap.Error(err),
		)
		return
	}

	e.mu.Lock()
	// The device returns its full state on every command; the decoded
	// reply overwrites confirmed entirely.
	e.confirmed = reported

	// Echo-back: the device's post-command value for the commanded field
	// becomes the new desired value for that field too. If the firmware
	// clamped or rejected the request, this stops the loop from retrying
	// an impossible target forever. Other desired fields keep pending
	// caller intent untouched.
	e.desired = e.desired.With(field, reported.Get(field))
	if e.desired.Speed > 0 {
		e.lastSpeed = e.desired.Speed
	}
	snapshot := e.confirmed
	cb := e.onUpdate
	e.mu.Unlock()

	logging.Info("Command confirmed",
		zap.String("field", field.String()),
		zap.String("state", snapshot.String()),
	)

	if cb != nil {
		cb(snapshot)
	}
}

// fetchStatus performs one unconditional status fetch and applies it.
// Returns true on success. Callers must hold the in-flight guard.
func (e *Engine) fetchStatus(ctx context.Context) bool {
	reported, err := e.client.Status(ctx)
	if err != nil {
		logging.Warn("Status fetch failed",
			zap.String("device", e.client.BaseURL),
			zap.Error(err),
		)
		return false
	}

	e.mu.Lock()
	// Fields with no pending caller intent (desired already equal to
	// confirmed) follow the device; fields with pending intent keep it so
	// the loop can still push them.
	for _, f := range []device.Field{device.FieldSpeed, device.FieldSwing} {
		if e.desired.Get(f) == e.confirmed.Get(f) {
			e.desired = e.desired.With(f, reported.Get(f))
		}
	}
	e.confirmed = reported
	if e.desired.Speed > 0 {
		e.lastSpeed = e.desired.Speed
	}
	snapshot := e.confirmed
	cb := e.onUpdate
	e.mu.Unlock()

	logging.Debug("Status fetched", zap.String("state", snapshot.String()))

	if cb != nil {
		cb(snapshot)
	}
	return true
}

// releaseGuard schedules the single-flight guard release after the cool-down
// delay. The release runs on its own timer, independent of how fast the
// device answered, so a hung or timed-out request can never leave the guard
// held forever.
func (e *Engine) releaseGuard() {
	if e.cooldown <= 0 {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
		return
	}
	time.AfterFunc(e.cooldown, func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	})
}
