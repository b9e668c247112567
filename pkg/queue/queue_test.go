package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_ReceiveIsLIFO(t *testing.T) {
	q := New[int]()
	for i := 1; i <= 5; i++ {
		q.Send(i)
	}

	for want := 5; want >= 1; want-- {
		if got := q.Receive(); got != want {
			t.Fatalf("Receive() = %d, want %d", got, want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after draining, want 0", q.Len())
	}
}

func TestQueue_InterleavedSendReceive(t *testing.T) {
	q := New[string]()

	q.Send("a")
	q.Send("b")
	if got := q.Receive(); got != "b" {
		t.Fatalf("Receive() = %q, want %q", got, "b")
	}
	q.Send("c")
	if got := q.Receive(); got != "c" {
		t.Fatalf("Receive() = %q, want %q", got, "c")
	}
	if got := q.Receive(); got != "a" {
		t.Fatalf("Receive() = %q, want %q", got, "a")
	}
}

func TestQueue_ReceiveBlocksUntilSend(t *testing.T) {
	q := New[int]()
	got := make(chan int, 1)

	go func() {
		got <- q.Receive()
	}()

	select {
	case v := <-got:
		t.Fatalf("Receive() returned %d before any Send", v)
	case <-time.After(50 * time.Millisecond):
	}

	q.Send(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("Receive() = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() did not wake after Send")
	}
}

func TestQueue_ReceiveWithDelayedProducer(t *testing.T) {
	q := New[int]()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Send(7)
	}()

	start := time.Now()
	if v := q.Receive(); v != 7 {
		t.Errorf("Receive() = %d, want 7", v)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Receive() returned after %v, expected it to wait for the producer", elapsed)
	}
}

func TestQueue_TryReceive(t *testing.T) {
	q := New[int]()

	if _, ok := q.TryReceive(); ok {
		t.Fatal("TryReceive() on empty queue reported ok")
	}

	q.Send(1)
	q.Send(2)
	v, ok := q.TryReceive()
	if !ok || v != 2 {
		t.Errorf("TryReceive() = (%d, %v), want (2, true)", v, ok)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
}

func TestQueue_ReceiveContext_ReturnsQueuedValue(t *testing.T) {
	q := New[int]()
	q.Send(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := q.ReceiveContext(ctx)
	if err != nil {
		t.Fatalf("ReceiveContext() error = %v, want nil", err)
	}
	if v != 3 {
		t.Errorf("ReceiveContext() = %d, want 3", v)
	}
}

func TestQueue_ReceiveContext_Cancel(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.ReceiveContext(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ReceiveContext() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReceiveContext() did not return after cancel")
	}
}

func TestQueue_ReceiveContext_Deadline(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.ReceiveContext(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ReceiveContext() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestQueue_ReceiveContext_WakesOnSend(t *testing.T) {
	q := New[int]()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Send(9)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := q.ReceiveContext(ctx)
	if err != nil {
		t.Fatalf("ReceiveContext() error = %v", err)
	}
	if v != 9 {
		t.Errorf("ReceiveContext() = %d, want 9", v)
	}
}

func TestQueue_CancelledWaiterDoesNotStealOthers(t *testing.T) {
	q := New[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := q.ReceiveContext(ctx)
		cancelled <- err
	}()

	got := make(chan int, 1)
	go func() {
		got <- q.Receive()
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-cancelled; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waiter error = %v", err)
	}

	q.Send(11)
	select {
	case v := <-got:
		if v != 11 {
			t.Errorf("Receive() = %d, want 11", v)
		}
	case <-time.After(time.Second):
		t.Fatal("remaining waiter was not woken")
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	const (
		producers   = 8
		consumers   = 8
		perProducer = 500
	)

	q := NewWithCapacity[int](64)
	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Send(p*perProducer + i)
			}
		}(p)
	}

	results := make(chan int, producers*perProducer)
	var cwg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for i := 0; i < producers*perProducer/consumers; i++ {
				results <- q.Receive()
			}
		}()
	}

	wg.Wait()
	done := make(chan struct{})
	go func() {
		cwg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers did not drain the queue")
	}
	close(results)

	seen := make(map[int]bool, producers*perProducer)
	for v := range results {
		if seen[v] {
			t.Fatalf("value %d delivered twice", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("received %d distinct values, want %d", len(seen), producers*perProducer)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestNewWithCapacity_Negative(t *testing.T) {
	q := NewWithCapacity[int](-1)
	q.Send(1)
	if got := q.Receive(); got != 1 {
		t.Errorf("Receive() = %d, want 1", got)
	}
}
