package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/timetracker-bot/internal/domain"
	"github.com/ykvlv/timetracker-bot/internal/store"
)

// Service implements the time-tracking use cases on top of a Repo.
type Service struct {
	repo store.Repo
	log  *zap.Logger
	now  func() time.Time
}

// New creates a Service using the process clock.
func New(repo store.Repo, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// WithClock overrides the clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EnsureUser returns the stored user, creating it on first interaction.
func (s *Service) EnsureUser(ctx context.Context, platformID int64, p domain.Profile) (*domain.User, error) {
	u, err := s.repo.GetUser(ctx, platformID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	u = &domain.User{PlatformID: platformID, Profile: p}
	if err := s.repo.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.Int64("user_id", platformID))
	return u, nil
}

// Message is an inbound tracked message.
type Message struct {
	MessageID int64
	ChatID    int64
	Text      string
	Date      time.Time
}

// Track stores a new message as an event. When the message was already
// stored, the existing event is returned and created is false.
func (s *Service) Track(ctx context.Context, u *domain.User, m Message) (e *domain.Event, created bool, err error) {
	e, err = s.repo.FindEvent(ctx, u.ID, m.MessageID)
	if err == nil {
		return e, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	e = &domain.Event{
		UserID:    u.ID,
		EventTime: m.Date.UTC(),
		MessageID: m.MessageID,
		Payload:   domain.Payload{MessageID: m.MessageID, ChatID: m.ChatID},
	}
	e.Apply(m.Text)
	if err := s.repo.InsertEvent(ctx, e); err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Edit re-extracts title and tags of an edited message in place. An edit of
// a message that was never stored is tracked as new.
func (s *Service) Edit(ctx context.Context, u *domain.User, m Message) (*domain.Event, error) {
	e, err := s.repo.FindEvent(ctx, u.ID, m.MessageID)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn("edit of unknown message, tracking as new",
			zap.Int64("user_id", u.PlatformID), zap.Int64("message_id", m.MessageID))
		e, _, err = s.Track(ctx, u, m)
		return e, err
	}
	if err != nil {
		return nil, err
	}
	e.Apply(m.Text)
	if err := s.repo.UpdateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AttachReply remembers the bot's echo message so later edits can update it.
func (s *Service) AttachReply(ctx context.Context, e *domain.Event, botMessageID int) error {
	e.Payload.BotMessageID = &botMessageID
	return s.repo.UpdateEvent(ctx, e)
}

// SetUTCOffset stores the user's UTC offset in hours.
func (s *Service) SetUTCOffset(ctx context.Context, u *domain.User, hours int) error {
	if hours < domain.MinUTCOffset || hours > domain.MaxUTCOffset {
		return fmt.Errorf("%w: %d out of range", domain.ErrInvalidUTCOffset, hours)
	}
	u.Settings.UTCOffset = hours
	return s.repo.UpdateUser(ctx, u)
}

// SetSleepTag stores the day-boundary tag; an empty tag clears it.
func (s *Service) SetSleepTag(ctx context.Context, u *domain.User, tag string) error {
	if tag == "" {
		u.Settings.SleepTag = nil
		return s.repo.UpdateUser(ctx, u)
	}
	tag, err := domain.ValidateSleepTag(tag)
	if err != nil {
		return err
	}
	u.Settings.SleepTag = &tag
	return s.repo.UpdateUser(ctx, u)
}
