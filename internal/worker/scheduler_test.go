package worker

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler()
	if err := s.Schedule("not a cron spec", func() {}); err == nil {
		t.Fatal("expected an error for an unparseable schedule")
	}
}

func TestScheduler_RunsTask(t *testing.T) {
	s := NewScheduler()

	var runs atomic.Int32
	if err := s.Schedule("@every 10ms", func() { runs.Add(1) }); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduled task never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler()
	if err := s.Schedule("@every 1h", func() {}); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}
