// Package rerender re-resolves and re-renders a chart when its container is
// resized or the color scheme changes.
//
// A Loop moves between three states:
//
//	Idle --event--> PendingRender --delay without events--> Rendering --> Idle
//
// Every event restarts the delay, so a burst of events causes one render.
// Rendering samples the color scheme, resolves the chart's configuration
// from the defaults and chart config captured at construction, and hands
// the result to a Consumer. Loops share no state with each other.
package rerender

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/NissesSenap/chartembed/internal/resolver"
	"github.com/charmbracelet/log"
)

// DefaultDelay is the debounce delay used when none is configured.
const DefaultDelay = 16 * time.Millisecond

// State is the render state of a Loop.
type State int

const (
	Idle State = iota
	PendingRender
	Rendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingRender:
		return "pending"
	case Rendering:
		return "rendering"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is an external trigger for a render.
type Event int

const (
	Resize Event = iota
	SchemeChange
)

func (e Event) String() string {
	switch e {
	case Resize:
		return "resize"
	case SchemeChange:
		return "scheme-change"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// SchemeSource reports the current color scheme of the environment.
type SchemeSource interface {
	ColorScheme() resolver.ColorScheme
}

// SchemeFunc adapts a function to SchemeSource.
type SchemeFunc func() resolver.ColorScheme

func (f SchemeFunc) ColorScheme() resolver.ColorScheme { return f() }

// Frame is what a Consumer receives on every render.
type Frame struct {
	Config  configtree.Mapping
	Caption string
	Scheme  resolver.ColorScheme
}

// Consumer draws a resolved configuration.
type Consumer interface {
	Render(Frame) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(Frame) error

func (f ConsumerFunc) Render(fr Frame) error { return f(fr) }

// Option configures a Loop.
type Option func(*Loop)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(l *Loop) {
		if d >= 0 {
			l.delay = d
		}
	}
}

// WithClock replaces the system clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithErrorHandler is called with every failed render.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Loop) {
		l.onError = fn
	}
}

// Loop is the debounced re-render state machine of one chart.
//
// Thread-safety: Notify, Stop and State are safe for concurrent use. The
// consumer is never called while the loop's lock is held.
type Loop struct {
	mu sync.Mutex

	defaults   configtree.Tree
	userConfig configtree.Tree
	schemes    SchemeSource
	consumer   Consumer

	clock   Clock
	delay   time.Duration
	logger  *log.Logger
	onError func(error)

	state State
	timer Timer
	seq   uint64 // sequence number to detect stale timers
}

// New creates an idle Loop for one chart. defaults and userConfig are
// captured for the lifetime of the loop and never modified.
func New(defaults, userConfig configtree.Tree, schemes SchemeSource, consumer Consumer, opts ...Option) *Loop {
	l := &Loop{
		defaults:   defaults,
		userConfig: userConfig,
		schemes:    schemes,
		consumer:   consumer,
		clock:      SystemClock{},
		delay:      DefaultDelay,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Notify records a triggering event. Any pending render is cancelled and
// rescheduled after the debounce delay.
func (l *Loop) Notify(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
	}
	l.seq++
	current := l.seq
	l.state = PendingRender
	l.timer = l.clock.AfterFunc(l.delay, func() {
		l.expire(current)
	})
	l.logger.Debug("render scheduled", "event", ev, "delay", l.delay)
}

// expire runs when a debounce timer fires.
func (l *Loop) expire(seq uint64) {
	l.mu.Lock()
	if seq != l.seq || l.state != PendingRender {
		l.mu.Unlock()
		return
	}
	l.state = Rendering
	l.timer = nil
	l.mu.Unlock()

	_ = l.render()

	l.mu.Lock()
	// An event during the render has already moved us back to PendingRender.
	if l.state == Rendering {
		l.state = Idle
	}
	l.mu.Unlock()
}

// RenderNow renders immediately without debouncing. It is used for the
// initial render of a chart.
func (l *Loop) RenderNow() error {
	return l.render()
}

func (l *Loop) render() error {
	scheme := l.schemes.ColorScheme()

	cfg, err := resolver.Resolve(l.defaults, l.userConfig, scheme)
	if err != nil {
		err = fmt.Errorf("failed to resolve chart config: %w", err)
	} else if renderErr := l.consumer.Render(Frame{
		Config:  cfg,
		Caption: resolver.Caption(cfg),
		Scheme:  scheme,
	}); renderErr != nil {
		err = fmt.Errorf("failed to render chart: %w", renderErr)
	}

	if err != nil {
		l.logger.Error("render failed", "scheme", scheme, "err", err)
		if l.onError != nil {
			l.onError(err)
		}
		return err
	}
	l.logger.Debug("rendered", "scheme", scheme)
	return nil
}

// Stop cancels any pending render and returns the loop to Idle.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	// Invalidate a timer callback that is already running
	l.seq++
	l.state = Idle
}

// Run feeds the resize and scheme-change sources into the loop until ctx is
// done. A closed source is ignored from then on.
func (l *Loop) Run(ctx context.Context, resize, schemeChange <-chan struct{}) error {
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-resize:
			if !ok {
				resize = nil
				continue
			}
			l.Notify(Resize)
		case _, ok := <-schemeChange:
			if !ok {
				schemeChange = nil
				continue
			}
			l.Notify(SchemeChange)
		}
	}
}
