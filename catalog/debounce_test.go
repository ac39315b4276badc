package catalog

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			runs.Add(1)
			last.Store(n)
		})
	}

	time.Sleep(150 * time.Millisecond)
	if runs.Load() != 1 {
		t.Errorf("Expected 1 run, got %d", runs.Load())
	}
	if last.Load() != 5 {
		t.Errorf("Expected the last trigger to run, got %d", last.Load())
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("Expected no run after Stop, got %d", runs.Load())
	}
}
