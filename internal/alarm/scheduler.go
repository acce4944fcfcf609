package alarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Scheduler hands alarms to whatever rings them. Implementations are
// platform specific; the store only decides what should fire and when.
type Scheduler interface {
	Schedule(ctx context.Context, a Alarm, at time.Time) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// LogScheduler records scheduling decisions instead of arming anything.
type LogScheduler struct {
	logger *slog.Logger
}

// NewLogScheduler returns a Scheduler that only logs.
func NewLogScheduler(logger *slog.Logger) *LogScheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogScheduler{logger: logger}
}

func (s *LogScheduler) Schedule(ctx context.Context, a Alarm, at time.Time) error {
	s.logger.InfoContext(ctx, "alarm scheduled",
		"id", a.ShortID(),
		"label", a.Label,
		"at", at.Format(time.RFC3339),
		"repeat", a.DaysString(),
	)
	return nil
}

func (s *LogScheduler) Cancel(ctx context.Context, id uuid.UUID) error {
	s.logger.InfoContext(ctx, "alarm canceled", "id", id.String()[:8])
	return nil
}

// Sync arms every enabled alarm at its next trigger after now and cancels
// the disabled ones and the one-shots that already fired. It keeps going past failures and returns them joined.
func Sync(ctx context.Context, s Scheduler, alarms []Alarm, now time.Time) error {
	var errs []error
	for _, a := range alarms {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if at, ok := a.NextTrigger(now); a.Enabled && ok {
			err = s.Schedule(ctx, a, at)
		} else {
			err = s.Cancel(ctx, a.ID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("alarm %s: %w", a.ShortID(), err))
		}
	}
	return errors.Join(errs...)
}
