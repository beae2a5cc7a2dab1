package match

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/tank-battle/game/engine"
)

var (
	ErrStopped        = errors.New("match loop stopped")
	ErrAlreadyRunning = errors.New("match loop already running")
)

// UpdateFunc receives a deep copy of the state after every change
type UpdateFunc func(state *engine.GameState)

// Option configures a Loop
type Option func(*Loop)

// WithInterval sets the projectile step period. Zero or negative disables the
// ticker; the game then only advances through Step.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.interval = d
	}
}

// WithOnUpdate registers the update callback
func WithOnUpdate(fn UpdateFunc) Option {
	return func(l *Loop) {
		l.onUpdate = fn
	}
}

// WithLogger sets the log entry used by the loop
func WithLogger(logger *log.Entry) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Result reports whether a command was applied and the state right after it,
// taken in the same loop turn
type Result struct {
	Applied bool
	State   *engine.GameState
}

// KeyResult reports what a key press did
type KeyResult struct {
	Key     string            `json:"key"`
	Bound   bool              `json:"bound"`
	Applied bool              `json:"applied"`
	Binding engine.Binding    `json:"binding"`
	State   *engine.GameState `json:"-"`
}

type request struct {
	run  func(e engine.Engine) bool
	done chan struct{}
}

// Loop owns one engine. Ticks and commands are serialized on the goroutine
// executing Run, each running to completion before the next one starts.
type Loop struct {
	engine   engine.Engine
	interval time.Duration
	onUpdate UpdateFunc
	logger   *log.Entry

	inbox    chan request
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

// New creates a loop around the engine. The default interval is the
// engine config's tick interval.
func New(e engine.Engine, opts ...Option) *Loop {
	l := &Loop{
		engine:   e,
		interval: e.GetConfig().TickInterval(),
		logger:   log.WithField("component", "match"),
		inbox:    make(chan request),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the configured tick period
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run processes ticks and commands until ctx is done or Stop is called.
// It returns nil after Stop and ctx.Err() after cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)

	var tick <-chan time.Time
	if l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	l.logger.WithField("interval", l.interval).Debug("match loop started")
	l.publish()

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("match loop cancelled")
			return ctx.Err()
		case <-l.quit:
			l.logger.Debug("match loop stopped")
			return nil
		case req := <-l.inbox:
			if req.run(l.engine) {
				l.publish()
			}
			close(req.done)
		case <-tick:
			l.step()
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Move moves the player's tank
func (l *Loop) Move(ctx context.Context, player engine.PlayerID, d engine.Direction) (Result, error) {
	var res Result
	err := l.do(ctx, func(e engine.Engine) bool {
		res.Applied = e.Move(player, d)
		res.State = e.GetState().Clone()
		return res.Applied
	})
	return res, err
}

// Fire launches a projectile from the player's tank
func (l *Loop) Fire(ctx context.Context, player engine.PlayerID) (Result, error) {
	var res Result
	err := l.do(ctx, func(e engine.Engine) bool {
		res.Applied = e.Fire(player)
		res.State = e.GetState().Clone()
		return res.Applied
	})
	return res, err
}

// PressKey dispatches a key identifier through the binding table
func (l *Loop) PressKey(ctx context.Context, key string) (KeyResult, error) {
	res := KeyResult{Key: key}
	err := l.do(ctx, func(e engine.Engine) bool {
		res.Binding, res.Bound, res.Applied = e.HandleKey(key)
		res.State = e.GetState().Clone()
		return res.Applied
	})
	return res, err
}

// Step advances projectiles n times, independent of the ticker
func (l *Loop) Step(ctx context.Context, n int) ([]engine.TickReport, error) {
	var reports []engine.TickReport
	err := l.do(ctx, func(e engine.Engine) bool {
		for i := 0; i < n; i++ {
			report := e.Tick()
			l.logReport(report)
			reports = append(reports, report)
		}
		return n > 0
	})
	return reports, err
}

// Reset restores the initial board and returns a copy of it
func (l *Loop) Reset(ctx context.Context) (*engine.GameState, error) {
	var state *engine.GameState
	err := l.do(ctx, func(e engine.Engine) bool {
		state = e.Reset().Clone()
		return true
	})
	return state, err
}

// SetConfig swaps the maze and restarts the game on it
func (l *Loop) SetConfig(ctx context.Context, config *engine.GameConfig) error {
	var cfgErr error
	err := l.do(ctx, func(e engine.Engine) bool {
		cfgErr = e.SetConfig(config)
		return cfgErr == nil
	})
	if err != nil {
		return err
	}
	return cfgErr
}

// Snapshot returns a deep copy of the current state
func (l *Loop) Snapshot(ctx context.Context) (*engine.GameState, error) {
	var state *engine.GameState
	err := l.do(ctx, func(e engine.Engine) bool {
		state = e.GetState().Clone()
		return false
	})
	return state, err
}

// do hands fn to the loop goroutine and waits for it to finish. Once the
// inbox accepts a request the loop always runs it before it can exit.
func (l *Loop) do(ctx context.Context, fn func(e engine.Engine) bool) error {
	req := request{run: fn, done: make(chan struct{})}

	select {
	case l.inbox <- req:
	case <-l.done:
		return ErrStopped
	case <-l.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) step() {
	report := l.engine.Tick()
	if !report.Changed {
		return
	}
	l.logReport(report)
	l.publish()
}

func (l *Loop) logReport(report engine.TickReport) {
	for _, w := range report.WallsDestroyed {
		l.logger.WithFields(log.Fields{"tick": report.Tick, "x": w.X, "y": w.Y}).Debug("wall destroyed")
	}
	for _, p := range report.TanksDestroyed {
		l.logger.WithFields(log.Fields{"tick": report.Tick, "player": p}).Info("tank destroyed")
	}
	if len(report.TanksDestroyed) > 0 && l.engine.IsGameOver() {
		l.logger.WithField("winner", l.engine.Winner()).Info("game over")
	}
}

func (l *Loop) publish() {
	if l.onUpdate == nil {
		return
	}
	l.onUpdate(l.engine.GetState().Clone())
}
