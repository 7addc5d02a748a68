package failsafe_test

import (
	"errors"
	"testing"

	failsafe "github.com/goliatone/go-failsafe"
)

func TestMemoResumesCallByCall(t *testing.T) {
	root := t.TempDir()
	calls := 0
	square := func(n int) func() (int, error) {
		return func() (int, error) {
			calls++
			return n * n, nil
		}
	}

	first := newRun(t, root)
	for _, n := range []int{2, 3} {
		if _, err := failsafe.Memo(first.manager, "square", square(n)); err != nil {
			t.Fatalf("memo: %v", err)
		}
	}
	first.exit.Exit(0)
	if calls != 2 {
		t.Fatalf("expected two computations, got %d", calls)
	}

	second := newRun(t, root)
	for i, want := range []int{4, 9, 16} {
		got, err := failsafe.Memo(second.manager, "square", square(i+2))
		if err != nil {
			t.Fatalf("memo: %v", err)
		}
		if got != want {
			t.Fatalf("call %d: expected %d, got %d", i, want, got)
		}
	}
	if calls != 3 {
		t.Fatalf("expected only the new call to compute, got %d computations", calls)
	}
}

func TestMemoRejectsResultTypeChange(t *testing.T) {
	r := newRun(t, t.TempDir())
	if _, err := failsafe.Memo(r.manager, "step", func() (int, error) { return 1, nil }); err != nil {
		t.Fatalf("memo: %v", err)
	}
	_, err := failsafe.Memo(r.manager, "step", func() (string, error) { return "x", nil })
	if !errors.Is(err, failsafe.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExecuteOnceSkipsCompletedSteps(t *testing.T) {
	root := t.TempDir()
	downloads := 0
	download := func() error {
		downloads++
		return nil
	}

	first := newRun(t, root)
	ran, err := failsafe.ExecuteOnce(first.manager, "download", download)
	if err != nil || !ran {
		t.Fatalf("expected first run to execute, ran=%t err=%v", ran, err)
	}
	first.exit.Exit(0)

	second := newRun(t, root)
	ran, err = failsafe.ExecuteOnce(second.manager, "download", download)
	if err != nil || ran {
		t.Fatalf("expected resumed run to skip, ran=%t err=%v", ran, err)
	}
	if downloads != 1 {
		t.Fatalf("expected a single download, got %d", downloads)
	}
}

func TestExecuteOnceFailureIsRetried(t *testing.T) {
	root := t.TempDir()
	boom := errors.New("network")

	first := newRun(t, root)
	if _, err := failsafe.ExecuteOnce(first.manager, "download", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected step error, got %v", err)
	}
	first.exit.Exit(0)

	second := newRun(t, root)
	ran, err := failsafe.ExecuteOnce(second.manager, "download", func() error { return nil })
	if err != nil || !ran {
		t.Fatalf("expected failed step to run again, ran=%t err=%v", ran, err)
	}
}
