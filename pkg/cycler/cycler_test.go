package cycler

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"
)

const (
	testMinCycle = 30 * time.Millisecond
	testMaxCycle = 60 * time.Millisecond
)

// recordingHandler collects events emitted by a cycler.
type recordingHandler struct {
	mu     sync.Mutex
	phases []PhaseChangeEvent
	states []StateChangeEvent
	notify chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{notify: make(chan struct{}, 64)}
}

func (h *recordingHandler) OnPhaseChange(e PhaseChangeEvent) {
	h.mu.Lock()
	h.phases = append(h.phases, e)
	h.mu.Unlock()
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *recordingHandler) OnStateChange(e StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e)
}

func (h *recordingHandler) Phases() []PhaseChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]PhaseChangeEvent{}, h.phases...)
}

func (h *recordingHandler) States() []StateChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]StateChangeEvent{}, h.states...)
}

// waitPhases blocks until at least n toggles were recorded.
func (h *recordingHandler) waitPhases(t *testing.T, n int, timeout time.Duration) []PhaseChangeEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		if got := h.Phases(); len(got) >= n {
			return got
		}
		select {
		case <-h.notify:
		case <-deadline:
			t.Fatalf("recorded %d toggles within %v, want %d", len(h.Phases()), timeout, n)
		}
	}
}

func newTestCycler(t *testing.T, opts ...Option) (*Cycler, *Handle) {
	t.Helper()
	opts = append([]Option{WithCycleRange(testMinCycle, testMaxCycle)}, opts...)
	c := New(opts...)
	h, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = h.Stop() })
	return c, h
}

func TestNew(t *testing.T) {
	c := New()

	if c.CurrentPhase() != Red {
		t.Errorf("CurrentPhase() = %v, want red", c.CurrentPhase())
	}
	if c.Status() != StateIdle {
		t.Errorf("Status() = %v, want Idle", c.Status())
	}
	if c.Duration() != 0 {
		t.Errorf("Duration() = %v before start, want 0", c.Duration())
	}
	if c.ID() == "" {
		t.Error("ID() is empty")
	}
	if New().ID() == c.ID() {
		t.Error("two cyclers share an ID")
	}
}

func TestNew_WithID(t *testing.T) {
	c := New(WithID("north"))
	if c.ID() != "north" {
		t.Errorf("ID() = %q, want %q", c.ID(), "north")
	}
}

func TestCycler_StartsRedThenTurnsGreen(t *testing.T) {
	c := New(WithCycleRange(testMinCycle, testMaxCycle))
	if c.CurrentPhase() != Red {
		t.Fatalf("CurrentPhase() before start = %v, want red", c.CurrentPhase())
	}

	start := time.Now()
	h, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop()

	got := make(chan Phase, 1)
	go func() {
		got <- c.WaitForPhase(Green)
	}()

	select {
	case p := <-got:
		elapsed := time.Since(start)
		if p != Green {
			t.Errorf("WaitForPhase(Green) = %v, want green", p)
		}
		if elapsed < testMinCycle {
			t.Errorf("turned green after %v, want at least %v", elapsed, testMinCycle)
		}
		if c.CurrentPhase() != Green {
			t.Errorf("CurrentPhase() after wait = %v, want green", c.CurrentPhase())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForPhase(Green) did not return")
	}
}

func TestCycler_DefaultTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a full default cycle")
	}

	c := New()
	start := time.Now()
	h, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultMaxCycle+2*time.Second)
	defer cancel()

	p, err := c.WaitForPhaseContext(ctx, Green)
	if err != nil {
		t.Fatalf("WaitForPhaseContext() error = %v", err)
	}
	elapsed := time.Since(start)
	if p != Green {
		t.Errorf("WaitForPhaseContext() = %v, want green", p)
	}
	if elapsed < DefaultMinCycle {
		t.Errorf("turned green after %v, want at least %v", elapsed, DefaultMinCycle)
	}
	if elapsed > DefaultMaxCycle+500*time.Millisecond {
		t.Errorf("turned green after %v, want at most ~%v", elapsed, DefaultMaxCycle)
	}
	if d := c.Duration(); d < DefaultMinCycle || d >= DefaultMaxCycle {
		t.Errorf("Duration() = %v, want within [%v, %v)", d, DefaultMinCycle, DefaultMaxCycle)
	}
}

func TestCycler_DeliveredPhasesAlternate(t *testing.T) {
	c, _ := newTestCycler(t)

	const n = 6
	got := make([]Phase, 0, n)
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		p, err := c.queue.ReceiveContext(ctx)
		cancel()
		if err != nil {
			t.Fatalf("receive #%d: %v", len(got)+1, err)
		}
		got = append(got, p)
		select {
		case <-deadline:
			t.Fatalf("collected %d phases, want %d", len(got), n)
		default:
		}
	}

	if got[0] != Green {
		t.Errorf("first delivered phase = %v, want green", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("phases %d and %d are both %v: %v", i-1, i, got[i], got)
		}
	}
}

func TestCycler_TwoWaitersBothServed(t *testing.T) {
	c, _ := newTestCycler(t)

	var wg sync.WaitGroup
	results := make(chan Phase, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- c.WaitForPhase(Green)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("not every waiter returned")
	}
	close(results)

	for p := range results {
		if p != Green {
			t.Errorf("waiter got %v, want green", p)
		}
	}
	if c.Toggles() < 3 {
		t.Errorf("Toggles() = %d, want at least 3 (green, red, green)", c.Toggles())
	}
}

func TestCycler_StartTwice(t *testing.T) {
	c, _ := newTestCycler(t)

	if _, err := c.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestCycler_StartAfterStop(t *testing.T) {
	c := New(WithCycleRange(testMinCycle, testMaxCycle))
	h, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if _, err := c.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Start() after Stop error = %v, want ErrAlreadyStarted", err)
	}
}

func TestHandle_Stop(t *testing.T) {
	handler := newRecordingHandler()
	c := New(
		WithCycleRange(10*time.Millisecond, 20*time.Millisecond),
		WithEventHandler(handler),
	)
	h, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	handler.waitPhases(t, 2, 2*time.Second)

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done() not closed after Stop")
	}
	if c.Status() != StateStopped {
		t.Errorf("Status() = %v, want Stopped", c.Status())
	}

	toggles := c.Toggles()
	time.Sleep(50 * time.Millisecond)
	if c.Toggles() != toggles {
		t.Errorf("toggled after Stop: %d -> %d", toggles, c.Toggles())
	}

	if err := h.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop() error = %v, want ErrNotRunning", err)
	}

	states := handler.States()
	want := []State{StateRunning, StateStopping, StateStopped}
	if len(states) != len(want) {
		t.Fatalf("got %d state events, want %d", len(states), len(want))
	}
	for i, s := range want {
		if states[i].Current != s {
			t.Errorf("state event %d = %v, want %v", i, states[i].Current, s)
		}
		if states[i].CyclerID != c.ID() {
			t.Errorf("state event %d cycler = %q, want %q", i, states[i].CyclerID, c.ID())
		}
	}
}

func TestCycler_ParentContextCancel(t *testing.T) {
	c := New(WithCycleRange(testMinCycle, testMaxCycle))
	ctx, cancel := context.WithCancel(context.Background())

	h, err := c.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after context cancel")
	}
	if c.Status() != StateStopped {
		t.Errorf("Status() = %v, want Stopped", c.Status())
	}
	if err := h.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() after cancel error = %v, want ErrNotRunning", err)
	}
}

func TestCycler_FixedCycleAfterFirstDraw(t *testing.T) {
	handler := newRecordingHandler()
	c, _ := newTestCycler(t, WithEventHandler(handler), WithRand(rand.New(rand.NewSource(7))))

	events := handler.waitPhases(t, 4, 3*time.Second)

	first := events[0].Cycle
	if first < testMinCycle || first >= testMaxCycle {
		t.Fatalf("cycle = %v, want within [%v, %v)", first, testMinCycle, testMaxCycle)
	}
	for i, e := range events {
		if e.Cycle != first {
			t.Errorf("event %d cycle = %v, want fixed %v", i, e.Cycle, first)
		}
		if e.Seq != uint64(i+1) {
			t.Errorf("event %d seq = %d, want %d", i, e.Seq, i+1)
		}
		if e.Current != e.Previous.Toggle() {
			t.Errorf("event %d: %v -> %v is not a toggle", i, e.Previous, e.Current)
		}
	}
	if c.Duration() != first {
		t.Errorf("Duration() = %v, want %v", c.Duration(), first)
	}
	for i := 1; i < len(events); i++ {
		if gap := events[i].At.Sub(events[i-1].At); gap < first {
			t.Errorf("toggle %d came %v after the previous one, want at least %v", i+1, gap, first)
		}
	}
}

func TestCycler_RedrawEachCycle(t *testing.T) {
	handler := newRecordingHandler()
	newTestCycler(t,
		WithEventHandler(handler),
		WithRedrawEachCycle(true),
		WithRand(rand.New(rand.NewSource(42))),
	)

	events := handler.waitPhases(t, 4, 3*time.Second)

	distinct := map[time.Duration]bool{}
	for _, e := range events {
		if e.Cycle < testMinCycle || e.Cycle >= testMaxCycle {
			t.Errorf("cycle = %v, want within [%v, %v)", e.Cycle, testMinCycle, testMaxCycle)
		}
		distinct[e.Cycle] = true
	}
	if len(distinct) < 2 {
		t.Errorf("all %d toggles used the same cycle, want redrawn durations", len(events))
	}
}

func TestCycler_WaitForPhaseContext_NotStarted(t *testing.T) {
	c := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.WaitForPhaseContext(ctx, Green)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForPhaseContext() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestCycler_WaitForRed(t *testing.T) {
	c, _ := newTestCycler(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p, err := c.WaitForPhaseContext(ctx, Red)
	if err != nil {
		t.Fatalf("WaitForPhaseContext(Red) error = %v", err)
	}
	if p != Red {
		t.Errorf("WaitForPhaseContext(Red) = %v, want red", p)
	}
	// The first toggle is to green, so red needs at least two.
	if c.Toggles() < 2 {
		t.Errorf("Toggles() = %d, want at least 2", c.Toggles())
	}
}

func TestCycler_PendingAccumulatesWithoutReaders(t *testing.T) {
	handler := newRecordingHandler()
	c, h := newTestCycler(t, WithEventHandler(handler))

	handler.waitPhases(t, 3, 3*time.Second)
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got, want := c.Pending(), int(c.Toggles()); got != want {
		t.Errorf("Pending() = %d, want %d (one per toggle)", got, want)
	}
	// Newest first.
	if p := c.queue.Receive(); p != c.CurrentPhase() {
		t.Errorf("first receive = %v, want latest phase %v", p, c.CurrentPhase())
	}
}
