package playback

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock never fires on its own; tests drive ticks with Engine.Tick
// and fire settle callbacks explicitly.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
	timers  []*manualTimer
}

type manualTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireTimers runs every pending, unstopped timer.
func (c *manualClock) fireTimers() int {
	c.mu.Lock()
	pending := append([]*manualTimer(nil), c.timers...)
	c.timers = nil
	c.mu.Unlock()

	fired := 0
	for _, t := range pending {
		if !t.stopped {
			t.f()
			fired++
		}
	}
	return fired
}

// recordingSink keeps every value written to it.
type recordingSink struct {
	mu     sync.Mutex
	writes []string
}

func (s *recordingSink) SetContent(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, text)
}

func (s *recordingSink) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return ""
	}
	return s.writes[len(s.writes)-1]
}

func newTestEngine() (*Engine, *manualClock) {
	clock := &manualClock{}
	return New(WithClock(clock)), clock
}

func TestRunRevealsOneCharacterPerTick(t *testing.T) {
	e, clock := newTestEngine()
	sink := &recordingSink{}
	target := "<h1>héllo</h1>"
	runes := []rune(target)

	require.NoError(t, e.Start(sink, target, Interval(60)))
	assert.Equal(t, "", sink.last(), "start clears the page")
	assert.Equal(t, StatusRunning, e.State().Status)

	ticks := 0
	for e.State().Revealed < len(runes) {
		e.Tick()
		ticks++
		require.Equal(t, string(runes[:ticks]), sink.last(), "tick %d", ticks)
		require.Equal(t, ticks, e.State().Revealed)
	}
	assert.Equal(t, len(runes), ticks, "one character per tick")

	// Finished but settling: still typing until the settle delay elapses.
	assert.True(t, e.State().Typing())
	e.Tick()
	assert.Equal(t, target, sink.last(), "extra ticks do not change content")

	clock.mu.Lock()
	require.Len(t, clock.timers, 1, "one settle timer per run")
	assert.Equal(t, SettleDelay, clock.timers[0].d)
	clock.mu.Unlock()

	require.Equal(t, 1, clock.fireTimers())
	assert.Equal(t, StatusIdle, e.State().Status)
}

func TestEmptyTargetCompletesWithoutRevealing(t *testing.T) {
	e, clock := newTestEngine()
	sink := &recordingSink{}

	require.NoError(t, e.Start(sink, "", Interval(50)))
	e.Tick()

	assert.Equal(t, []string{""}, sink.writes, "only the initial clear is written")
	assert.Equal(t, 0, e.State().Revealed)
	require.Equal(t, 1, clock.fireTimers())
	assert.Equal(t, StatusIdle, e.State().Status)
}

func TestRestartCancelsPreviousRun(t *testing.T) {
	e, clock := newTestEngine()
	first := &recordingSink{}
	second := &recordingSink{}

	require.NoError(t, e.Start(first, "abcdef", Interval(60)))
	e.Tick()
	e.Tick()

	require.NoError(t, e.Start(second, "xyz", Interval(60)))
	clock.mu.Lock()
	firstTicker := clock.tickers[0]
	clock.mu.Unlock()
	assert.True(t, firstTicker.stoppedEventually(), "first ticker is released")
	e.Tick()

	assert.Equal(t, "ab", first.last(), "old run is never written again")
	assert.Equal(t, "x", second.last())
	assert.Equal(t, 1, e.State().Revealed, "revealed resets on start")
	assert.Equal(t, uint64(2), e.State().Run)
}

func (t *manualTicker) stoppedEventually() bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if t.stopped.Load() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestRestartDuringSettleKeepsNewRunRunning(t *testing.T) {
	e, clock := newTestEngine()

	require.NoError(t, e.Start(&recordingSink{}, "a", Interval(60)))
	e.Tick() // completes, settle pending

	require.NoError(t, e.Start(&recordingSink{}, "bcd", Interval(60)))
	assert.Equal(t, 0, clock.fireTimers(), "stale settle timer was stopped")
	assert.Equal(t, StatusRunning, e.State().Status)
}

func TestCancelAndClose(t *testing.T) {
	e, _ := newTestEngine()
	sink := &recordingSink{}

	require.NoError(t, e.Start(sink, "abc", Interval(60)))
	e.Tick()
	e.Cancel()
	assert.Equal(t, StatusIdle, e.State().Status)
	e.Tick()
	assert.Equal(t, "a", sink.last(), "ticks after cancel are ignored")

	require.NoError(t, e.Start(sink, "abc", Interval(60)))
	e.Close()
	e.Tick()
	assert.Equal(t, "", sink.last(), "closed engine never writes")
	assert.ErrorIs(t, e.Start(sink, "abc", Interval(60)), ErrClosed)
}

func TestSubscribersSeeStates(t *testing.T) {
	e, clock := newTestEngine()
	var states []State
	e.Subscribe(func(s State) { states = append(states, s) })

	require.NoError(t, e.Start(&recordingSink{}, "ab", Interval(60)))
	e.Tick()
	e.Tick()
	clock.fireTimers()

	require.Len(t, states, 4)
	assert.Equal(t, StatusRunning, states[0].Status)
	assert.Equal(t, 0, states[0].Revealed)
	assert.Equal(t, 2, states[2].Revealed)
	assert.Equal(t, StatusIdle, states[3].Status)
}

func TestSystemClockRunsToCompletion(t *testing.T) {
	e := New(WithSettleDelay(10 * time.Millisecond))
	defer e.Close()

	var mu sync.Mutex
	var got []string
	sink := SinkFunc(func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	require.NoError(t, e.Start(sink, "go!", minInterval))
	require.Eventually(t, func() bool { return e.State().Status == StatusIdle }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "g", "go", "go!"}, got)
}
