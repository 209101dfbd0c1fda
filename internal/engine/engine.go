package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/fanlink/internal/device"
	"github.com/muurk/fanlink/internal/logging"
)

const (
	// DefaultInterval is the default reconciliation tick interval
	DefaultInterval = 2 * time.Second

	// DefaultCooldown is the default single-flight guard release delay.
	// The guard is held for this long after a command completes, whatever
	// the outcome, to rate-limit the device and absorb its internal
	// debounce.
	DefaultCooldown = 1 * time.Second
)

// Options configures an Engine.
type Options struct {
	// MaxSpeed is the highest speed step the device firmware supports.
	// Zero selects device.DefaultMaxSpeed.
	MaxSpeed int

	// Interval is the reconciliation tick interval. Zero selects
	// DefaultInterval.
	Interval time.Duration

	// Cooldown is the guard release delay after each command.
	// Negative disables the delay; zero selects DefaultCooldown.
	Cooldown time.Duration

	// OnUpdate, if set, is called with a snapshot after every confirmed
	// state change. It is invoked outside the engine lock but from engine
	// goroutines; implementations must not block.
	OnUpdate func(device.State)
}

// Engine reconciles a locally held desired state against the state one fan
// device reports, over the device's lossy HTTP control channel. One engine
// instance manages exactly one device.
//
// Callers write intent through SetDesired and read the best-known device
// truth through Confirmed; neither ever blocks on the network. A background
// timer drives the reconciliation loop (see reconcile.go).
type Engine struct {
	client   *device.Client
	maxSpeed int
	interval time.Duration
	cooldown time.Duration
	onUpdate func(device.State)

	// mu serializes every access to desired, confirmed, inFlight and
	// lastSpeed. All writers to shared state funnel through it.
	mu        sync.Mutex
	desired   device.State
	confirmed device.State
	inFlight  bool
	lastSpeed int // last non-zero desired speed, reused on power-on

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates an engine for the given device client. The two state records
// are created once here, initialized to a neutral off state, and live for
// the engine's entire lifetime.
func New(client *device.Client, opts Options) *Engine {
	if opts.MaxSpeed <= 0 {
		opts.MaxSpeed = device.DefaultMaxSpeed
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	switch {
	case opts.Cooldown < 0:
		opts.Cooldown = 0
	case opts.Cooldown == 0:
		opts.Cooldown = DefaultCooldown
	}

	return &Engine{
		client:    client,
		maxSpeed:  opts.MaxSpeed,
		interval:  opts.Interval,
		cooldown:  opts.Cooldown,
		onUpdate:  opts.OnUpdate,
		lastSpeed: 1,
	}
}

// MaxSpeed returns the configured highest speed step.
func (e *Engine) MaxSpeed() int {
	return e.maxSpeed
}

// SetDesired records caller intent for one field. The write is validated
// against the field's domain, applied purely in memory, and picked up by the
// next reconciliation tick; it never triggers a network call itself.
//
// Power is a derived field: power-off intent is translated to speed 0 and
// power-on intent restores the last non-zero desired speed, since the device
// only understands power through the speed command.
func (e *Engine) SetDesired(field device.Field, value int) error {
	if err := device.ValidateField(field, value, e.maxSpeed); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if field == device.FieldPower {
		if value == device.PowerOn {
			if e.desired.Speed == 0 {
				e.desired = e.desired.With(device.FieldSpeed, e.lastSpeed)
			}
		} else {
			e.desired = e.desired.With(device.FieldSpeed, 0)
		}
	} else {
		e.desired = e.desired.With(field, value)
	}

	if e.desired.Speed > 0 {
		e.lastSpeed = e.desired.Speed
	}

	logging.Debug("Desired state updated",
		zap.String("field", field.String()),
		zap.Int("value", value),
		zap.String("desired", e.desired.String()),
	)
	return nil
}

// Confirmed returns a snapshot of the last state the device itself reported.
// It never blocks on the network.
func (e *Engine) Confirmed() device.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmed
}

// Desired returns a snapshot of the current caller intent.
func (e *Engine) Desired() device.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.desired
}

// InFlight reports whether a device command is currently outstanding.
func (e *Engine) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// RefreshNow forces an unconditional status fetch, overwriting the confirmed
// state regardless of diff state. The fetch runs in the background; the call
// itself returns immediately. If a command is already in flight, RefreshNow
// performs no call and returns a busy DeviceError, which callers should
// treat as a no-op signal rather than a failure.
func (e *Engine) RefreshNow() error {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		logging.Debug("Refresh declined, command in flight")
		return device.NewBusyError("refresh declined, a command is in flight")
	}
	e.inFlight = true
	e.mu.Unlock()

	go func() {
		defer e.releaseGuard()
		e.fetchStatus(context.Background())
	}()
	return nil
}

// Start launches the background reconciliation loop. It primes the confirmed
// state with an initial status fetch (retried under exponential backoff until
// it succeeds or the engine stops), then ticks at the configured interval.
// Start is a no-op if the engine is already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	logging.Info("Engine starting",
		zap.String("device", e.client.BaseURL),
		zap.Duration("interval", e.interval),
		zap.Duration("cooldown", e.cooldown),
	)
	go e.run(ctx)
}

// Stop cancels the reconciliation timer and waits for the loop goroutine to
// exit. An in-flight request is left to complete or time out naturally; the
// guard discipline is not altered.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	cancel()
	<-done
	logging.Info("Engine stopped", zap.String("device", e.client.BaseURL))
}
