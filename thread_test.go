package threadport

import (
	"errors"
	"testing"
	"time"
)

func TestThreadJoinExitCode(t *testing.T) {
	th, err := Create(func(arg any) int {
		return arg.(int)
	}, 42)
	if err != nil {
		t.Fatal(err)
	}
	code, err := th.Join()
	if err != nil {
		t.Fatal(err)
	}
	if code != 42 {
		t.Errorf("joined exit code %d, want 42", code)
	}
}

func TestThreadCreateNilFunc(t *testing.T) {
	if _, err := Create(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestThreadJoinTwice(t *testing.T) {
	th, err := Create(func(any) int { return 1 }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := th.Join(); err != nil {
		t.Fatal(err)
	}
	if _, err := th.Join(); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("second join: expected ErrNotJoinable, got %v", err)
	}
}

func TestThreadDetach(t *testing.T) {
	release := make(chan struct{})
	th, err := Create(func(any) int {
		<-release
		return 0
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := th.Detach(); err != nil {
		t.Fatal(err)
	}
	// Neither a second detach nor a join is permitted afterwards.
	if err := th.Detach(); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("second detach: expected ErrNotJoinable, got %v", err)
	}
	if _, err := th.Join(); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("join after detach: expected ErrNotJoinable, got %v", err)
	}
	close(release)
}

func TestThreadExit(t *testing.T) {
	th, err := Create(func(any) int {
		Exit(13)
		return 0 // unreachable
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	code, err := th.Join()
	if err != nil {
		t.Fatal(err)
	}
	if code != 13 {
		t.Errorf("exit code %d, want 13", code)
	}
}

func TestThreadExitRunsDestructorSweep(t *testing.T) {
	fired := false
	slot, err := NewTSS(func(any) { fired = true })
	if err != nil {
		t.Fatal(err)
	}
	defer slot.Delete()

	th, err := Create(func(any) int {
		slot.Set("value")
		Exit(0)
		return 0
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := th.Join(); err != nil {
		t.Fatal(err)
	}
	if !fired {
		t.Error("Exit skipped the destructor sweep")
	}
}

func TestThreadEqual(t *testing.T) {
	var inside *Thread
	got := make(chan *Thread, 1)
	th, err := Create(func(any) int {
		got <- Current()
		return 0
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	inside = <-got
	if !Equal(th, inside) {
		t.Error("Current() inside the thread is not Equal to its Create handle")
	}
	if _, err := th.Join(); err != nil {
		t.Fatal(err)
	}

	other, err := Create(func(any) int { return 0 }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if Equal(th, other) {
		t.Error("distinct threads compare Equal")
	}
	other.Join()

	if !Equal(nil, nil) {
		t.Error("nil handles should compare Equal")
	}
	if Equal(th, nil) {
		t.Error("handle compares Equal to nil")
	}
}

func TestCurrentAdoptsForeignThread(t *testing.T) {
	// The test goroutine was not spawned by Create.
	a := Current()
	b := Current()
	if !Equal(a, b) {
		t.Error("Current() identity not stable across calls")
	}
	if _, err := a.Join(); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("adopted handle must not be joinable, got %v", err)
	}
}

func TestExitUnregistersAdoptedThread(t *testing.T) {
	ids := make(chan int64, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		th := Current()
		ids <- th.id.Load()
		Exit(0)
		t.Error("Exit returned to an adopted thread") // unreachable
	}()
	<-done
	if id := <-ids; lookupThread(id) != nil {
		t.Error("adopted handle still registered after Exit")
	}
}

func TestSleep(t *testing.T) {
	t.Run("sleeps at least the requested duration", func(t *testing.T) {
		start := time.Now()
		if err := Sleep(Timespec{Nsec: int64(30 * time.Millisecond)}, nil); err != nil {
			t.Fatal(err)
		}
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("slept only %v", elapsed)
		}
	})

	t.Run("remaining-time retrieval is rejected", func(t *testing.T) {
		var remaining Timespec
		if err := Sleep(Timespec{Sec: 1}, &remaining); !errors.Is(err, ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})
}

func TestYield(t *testing.T) {
	// Only a scheduler hint; just verify it returns.
	Yield()
}

func TestThreadStress(t *testing.T) {
	const n = 64
	handles := make([]*Thread, n)
	for i := 0; i < n; i++ {
		th, err := Create(func(arg any) int {
			return arg.(int)
		}, i)
		if err != nil {
			t.Fatal(err)
		}
		handles[i] = th
	}
	for i, th := range handles {
		code, err := th.Join()
		if err != nil {
			t.Fatal(err)
		}
		if code != i {
			t.Errorf("thread %d exited with %d", i, code)
		}
	}
}
