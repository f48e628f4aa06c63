package layout

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_ReplacesPendingTask(t *testing.T) {
	s := NewScheduler()
	var first, second atomic.Bool

	s.Schedule(20*time.Millisecond, func() { first.Store(true) })
	s.Schedule(20*time.Millisecond, func() { second.Store(true) })

	time.Sleep(80 * time.Millisecond)

	if first.Load() {
		t.Error("replaced task should not run")
	}
	if !second.Load() {
		t.Error("latest task should run")
	}
	if s.Pending() {
		t.Error("nothing should be pending after the task ran")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	var ran atomic.Bool

	s.Schedule(20*time.Millisecond, func() { ran.Store(true) })
	s.Cancel()

	time.Sleep(60 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled task should not run")
	}
	if s.Pending() {
		t.Error("Pending should be false after Cancel")
	}
}
