package alarm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
)

type recordingScheduler struct {
	scheduled map[uuid.UUID]time.Time
	canceled  []uuid.UUID
	fail      error
}

func (r *recordingScheduler) Schedule(_ context.Context, a Alarm, at time.Time) error {
	if r.fail != nil {
		return r.fail
	}
	if r.scheduled == nil {
		r.scheduled = map[uuid.UUID]time.Time{}
	}
	r.scheduled[a.ID] = at
	return nil
}

func (r *recordingScheduler) Cancel(_ context.Context, id uuid.UUID) error {
	r.canceled = append(r.canceled, id)
	return nil
}

func TestSync(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	on := New("on", clock.New(3, 0))
	on.ArmedAt = now
	off := New("off", clock.New(4, 0))
	off.Enabled = false
	rang := New("rang", clock.New(9, 0))
	rang.ArmedAt = now.Add(-6 * time.Hour)

	rec := &recordingScheduler{}
	if err := Sync(context.Background(), rec, []Alarm{on, off, rang}, now); err != nil {
		t.Fatalf("Sync error: %v", err)
	}

	want, _ := on.NextTrigger(now)
	if at, ok := rec.scheduled[on.ID]; !ok || !at.Equal(want) {
		t.Errorf("enabled alarm scheduled at %v (ok=%v)", at, ok)
	}
	if _, ok := rec.scheduled[rang.ID]; ok {
		t.Error("a one-shot alarm that already rang was scheduled again")
	}
	if len(rec.canceled) != 2 || rec.canceled[0] != off.ID || rec.canceled[1] != rang.ID {
		t.Errorf("canceled = %v, want [%s %s]", rec.canceled, off.ID, rang.ID)
	}
}

func TestSync_CollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	rec := &recordingScheduler{fail: boom}
	alarms := []Alarm{New("a", clock.New(1, 0)), New("b", clock.New(2, 0))}

	err := Sync(context.Background(), rec, alarms, time.Now())
	if !errors.Is(err, boom) {
		t.Errorf("Sync error = %v, want wrapped boom", err)
	}
}

func TestSync_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sync(ctx, &recordingScheduler{}, []Alarm{New("a", clock.New(1, 0))}, time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sync error = %v, want context.Canceled", err)
	}
}

func TestLogScheduler(t *testing.T) {
	s := NewLogScheduler(nil)
	a := New("fajr", clock.New(5, 0))
	if err := s.Schedule(context.Background(), a, time.Now()); err != nil {
		t.Errorf("Schedule error: %v", err)
	}
	if err := s.Cancel(context.Background(), a.ID); err != nil {
		t.Errorf("Cancel error: %v", err)
	}
}
