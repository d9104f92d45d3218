package debounce_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/formulary-browser/debounce"
	"github.com/giygas/formulary-browser/debounce/debouncetest"
)

const quiet = 300 * time.Millisecond

func TestTriggerCoalescesRapidInput(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	var applied []string
	for _, v := range []string{"a", "ab", "abc"} {
		d.Trigger("query", func() { applied = append(applied, v) })
		clock.Advance(100 * time.Millisecond)
	}

	if len(applied) != 0 {
		t.Fatalf("Nothing should be applied before the quiet interval, got %v", applied)
	}

	clock.Advance(quiet)

	if len(applied) != 1 || applied[0] != "abc" {
		t.Fatalf("Expected exactly one application of abc, got %v", applied)
	}
	if d.Pending("query") {
		t.Error("Nothing should be pending after firing")
	}
}

func TestTriggerFiresAfterQuietInterval(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	fired := 0
	d.Trigger("query", func() { fired++ })

	clock.Advance(quiet - time.Millisecond)
	if fired != 0 {
		t.Fatal("Fired before the quiet interval elapsed")
	}

	clock.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("Expected one call, got %d", fired)
	}

	clock.Advance(time.Hour)
	if fired != 1 {
		t.Fatalf("Action ran again, got %d calls", fired)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	var got []string
	d.Trigger("formulary", func() { got = append(got, "formulary") })
	d.Trigger("dilution", func() { got = append(got, "dilution") })

	if clock.Pending() != 2 {
		t.Errorf("Expected 2 timers, got %d", clock.Pending())
	}

	clock.Advance(quiet)
	if len(got) != 2 {
		t.Errorf("Expected both keys to fire, got %v", got)
	}
}

func TestOnePendingTimerPerKey(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	for range 5 {
		d.Trigger("query", func() {})
	}

	if clock.Pending() != 1 {
		t.Errorf("Expected 1 live timer, got %d", clock.Pending())
	}
}

func TestFlush(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	value := ""
	d.Trigger("query", func() { value = "amox" })

	if !d.Flush("query") {
		t.Fatal("Flush should report a pending action")
	}
	if value != "amox" {
		t.Fatalf("Flush did not run the action, value = %q", value)
	}

	// the stopped timer never runs the action a second time
	value = ""
	clock.Advance(quiet)
	if value != "" {
		t.Error("Action ran again after flush")
	}

	if d.Flush("query") {
		t.Error("Flush with nothing pending should report false")
	}
}

func TestCancel(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	fired := false
	d.Trigger("query", func() { fired = true })

	if !d.Cancel("query") {
		t.Fatal("Cancel should report a pending action")
	}
	clock.Advance(quiet)
	if fired {
		t.Error("Cancelled action ran")
	}
	if d.Cancel("query") {
		t.Error("Second cancel should report false")
	}
}

func TestStop(t *testing.T) {
	clock := debouncetest.NewClock()
	d := debounce.New(quiet, debounce.WithAfterFunc(clock.AfterFunc))

	fired := 0
	d.Trigger("a", func() { fired++ })
	d.Trigger("b", func() { fired++ })
	d.Stop()

	d.Trigger("c", func() { fired++ })
	clock.Advance(quiet)

	if fired != 0 {
		t.Errorf("Expected no actions after Stop, got %d", fired)
	}
	if clock.Pending() != 0 {
		t.Errorf("Expected no live timers after Stop, got %d", clock.Pending())
	}
}

func TestZeroDelayRunsImmediately(t *testing.T) {
	d := debounce.New(0)

	fired := false
	d.Trigger("query", func() { fired = true })

	if !fired {
		t.Error("Zero delay should run the action synchronously")
	}
	if d.Pending("query") {
		t.Error("Nothing should be pending with zero delay")
	}
}

func TestRealTimers(t *testing.T) {
	d := debounce.New(20 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Value
	var wg sync.WaitGroup
	wg.Add(1)

	for _, v := range []string{"a", "ab", "abc"} {
		d.Trigger("query", func() {
			calls.Add(1)
			last.Store(v)
			wg.Done()
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Debounced action never ran")
	}

	// give a superseded timer the chance to misfire
	time.Sleep(50 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("Expected one call, got %d", calls.Load())
	}
	if last.Load() != "abc" {
		t.Errorf("Expected abc, got %v", last.Load())
	}
}
