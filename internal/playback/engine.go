// Package playback replays a page's content as if it were being typed:
// the page is cleared and then regrown one character per tick.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("playback engine closed")

// Status is the engine's state machine position.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
)

// State is a snapshot of the engine. Revealed never exceeds Total; once
// they are equal the run is settling and will return to Idle.
type State struct {
	Status   Status        `json:"status"`
	Revealed int           `json:"revealed"`
	Total    int           `json:"total"`
	Interval time.Duration `json:"interval"`
	Run      uint64        `json:"run"`
}

// Typing reports whether a run is in progress.
func (s State) Typing() bool { return s.Status == StatusRunning }

// Sink receives the revealed prefix on every tick.
type Sink interface {
	SetContent(text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string)

func (f SinkFunc) SetContent(text string) { f(text) }

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithSettleDelay overrides SettleDelay.
func WithSettleDelay(d time.Duration) Option { return func(e *Engine) { e.settle = d } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option { return func(e *Engine) { e.log = l } }

// Engine is the Idle -> Running -> Idle controller. At most one run is
// live; starting a new one cancels the previous one. Sinks and
// subscribers are called with the engine locked and must not call back
// into it.
type Engine struct {
	mu     sync.Mutex
	clock  Clock
	settle time.Duration
	log    logrus.FieldLogger

	status   Status
	sink     Sink
	target   []rune
	revealed int
	interval time.Duration
	run      uint64

	stopLoop    chan struct{}
	settleTimer Timer
	subs        []func(State)
	closed      bool
}

// New creates an idle Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:  SystemClock{},
		settle: SettleDelay,
		log:    logrus.StandardLogger(),
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers fn to receive every state change.
func (e *Engine) Subscribe(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Start snapshots target, clears the sink and begins revealing target one
// character every interval. A run already in progress is cancelled first.
func (e *Engine) Start(sink Sink, target string, interval time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if interval < minInterval {
		interval = minInterval
	}

	e.stopTimersLocked()
	e.run++
	e.status = StatusRunning
	e.sink = sink
	e.target = []rune(target)
	e.revealed = 0
	e.interval = interval

	e.sink.SetContent("")

	stop := make(chan struct{})
	e.stopLoop = stop
	go e.loop(e.run, e.clock.NewTicker(interval), stop)

	e.log.WithFields(logrus.Fields{
		"run":      e.run,
		"chars":    len(e.target),
		"interval": interval,
	}).Debug("playback started")
	e.notifyLocked()
	return nil
}

// Tick reveals one more character of the current run. It does nothing when
// idle or when the run has already revealed everything.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked(e.run)
}

// Cancel stops the current run where it is and returns to Idle.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusIdle {
		return
	}
	e.stopTimersLocked()
	e.status = StatusIdle
	e.log.WithFields(logrus.Fields{"run": e.run, "revealed": e.revealed}).Debug("playback cancelled")
	e.notifyLocked()
}

// Close cancels any run and refuses further starts. The sink of a closed
// engine is never written to again.
func (e *Engine) Close() {
	e.Cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.sink = nil
}

func (e *Engine) loop(run uint64, t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			e.mu.Lock()
			more := e.tickLocked(run)
			e.mu.Unlock()
			if !more {
				return
			}
		}
	}
}

// tickLocked advances run and reports whether more ticks are wanted.
func (e *Engine) tickLocked(run uint64) bool {
	if run != e.run || e.status != StatusRunning || e.sink == nil {
		return false
	}
	if e.revealed >= len(e.target) {
		e.completeLocked()
		return false
	}

	e.revealed++
	e.sink.SetContent(string(e.target[:e.revealed]))
	e.notifyLocked()

	if e.revealed == len(e.target) {
		e.completeLocked()
		return false
	}
	return true
}

// completeLocked stops ticking and schedules the drop back to Idle.
func (e *Engine) completeLocked() {
	if e.stopLoop != nil {
		close(e.stopLoop)
		e.stopLoop = nil
	}
	if e.settleTimer != nil {
		return
	}
	run := e.run
	e.settleTimer = e.clock.AfterFunc(e.settle, func() { e.settled(run) })
}

func (e *Engine) settled(run uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if run != e.run || e.status != StatusRunning {
		return
	}
	e.settleTimer = nil
	e.status = StatusIdle
	e.log.WithFields(logrus.Fields{"run": run, "chars": len(e.target)}).Debug("playback finished")
	e.notifyLocked()
}

func (e *Engine) stopTimersLocked() {
	if e.stopLoop != nil {
		close(e.stopLoop)
		e.stopLoop = nil
	}
	if e.settleTimer != nil {
		e.settleTimer.Stop()
		e.settleTimer = nil
	}
}

func (e *Engine) stateLocked() State {
	return State{
		Status:   e.status,
		Revealed: e.revealed,
		Total:    len(e.target),
		Interval: e.interval,
		Run:      e.run,
	}
}

func (e *Engine) notifyLocked() {
	st := e.stateLocked()
	for _, fn := range e.subs {
		fn(st)
	}
}
