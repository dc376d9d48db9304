package tracker

import (
	"context"

	"github.com/ykvlv/timetracker-bot/internal/domain"
)

// ResolveWindow computes the time range for a day offset. Without a sleep
// tag the range is the calendar day in the user's zone. With one, it runs
// from the first sleep-tagged event of that day to the first sleep-tagged
// event after it (or now). If the day has no sleep-tagged event the window
// has no start and selects nothing.
func (s *Service) ResolveWindow(ctx context.Context, u *domain.User, dayOffset int) (domain.Window, error) {
	now := s.now()
	day := domain.DayBounds(now, dayOffset, u.Settings.UTCOffset)
	if !u.Settings.HasSleepTag() {
		return day, nil
	}
	tag := *u.Settings.SleepTag

	var w domain.Window
	start, err := s.repo.FirstTimestampOnDate(ctx, u.ID, day, tag)
	if err != nil {
		return w, err
	}
	if start != nil {
		w.Start = *start
	}

	end, err := s.repo.FirstTimestampAfterDate(ctx, u.ID, domain.NextDayStart(now, dayOffset, u.Settings.UTCOffset), tag)
	if err != nil {
		return w, err
	}
	if end != nil {
		w.End = *end
	} else {
		w.End = now
	}
	return w, nil
}

// Rows returns the events of the resolved window in ascending order.
func (s *Service) Rows(ctx context.Context, u *domain.User, dayOffset int) ([]domain.Row, error) {
	w, err := s.ResolveWindow(ctx, u, dayOffset)
	if err != nil {
		return nil, err
	}
	if w.IsEmpty() {
		return nil, nil
	}
	return s.repo.QueryRange(ctx, u.ID, w.Start, w.End)
}

// DayLog returns one formatted line per event of the day.
func (s *Service) DayLog(ctx context.Context, u *domain.User, dayOffset int) ([]string, error) {
	rows, err := s.Rows(ctx, u, dayOffset)
	if err != nil {
		return nil, err
	}
	return domain.FormatLog(rows, u.Settings.UTCOffset), nil
}

// DayStat returns the per-tag duration report of the day.
func (s *Service) DayStat(ctx context.Context, u *domain.User, dayOffset int) (string, error) {
	rows, err := s.Rows(ctx, u, dayOffset)
	if err != nil {
		return "", err
	}
	return domain.ComputeReport(rows), nil
}
