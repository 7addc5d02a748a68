package exit

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"
)

func TestInterruptibleReturnsLoopError(t *testing.T) {
	boom := errors.New("boom")
	err := Interruptible(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected loop error, got %v", err)
	}
}

func TestInterruptiblePropagatesParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Interruptible(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected parent cancellation to propagate, got %v", err)
	}
}

func TestInterruptibleSwallowsSignal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("signals cannot be sent to self on windows")
	}
	c := New()
	hook := mustRegister(t, c, PhasePersist, "checkpoint", func(Status) error { return nil })

	err := Interruptible(context.Background(), func(ctx context.Context) error {
		proc, err := os.FindProcess(os.Getpid())
		if err != nil {
			return err
		}
		if err := proc.Signal(os.Interrupt); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return errors.New("signal not delivered")
		}
	})
	if err != nil {
		t.Fatalf("expected interruption to return nil, got %v", err)
	}
	if c.Pending(PhasePersist) != 1 || hook.Name() != "checkpoint" {
		t.Fatalf("expected registered hooks to survive the interruption")
	}
}
