package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_HooksRunInReverse(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		h.OnShutdown(func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	h.Trigger()
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done should be closed after Wait returns")
	}
}

func TestHandler_WaitOnContext(t *testing.T) {
	h := NewHandler(time.Second)

	ran := false
	h.OnShutdown(func(context.Context) error {
		ran = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !ran {
		t.Error("hook did not run")
	}
}

func TestHandler_WaitOnSignal(t *testing.T) {
	h := NewHandler(time.Second)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to install its signal handler.
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after SIGTERM")
	}
}

func TestHandler_HookErrorsJoined(t *testing.T) {
	h := NewHandler(time.Second)

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	h.OnShutdown(func(context.Context) error { return errA })
	h.OnShutdown(func(context.Context) error { return nil })
	h.OnShutdown(func(context.Context) error { return errB })

	h.Trigger()
	err := h.Wait(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() = %v, want both hook errors", err)
	}
}

func TestHandler_HookTimeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.OnShutdown(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	h.Trigger()
	h.Trigger()
	if err := h.Wait(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}
