package store

import (
	"context"
	"errors"
	"time"

	"github.com/ykvlv/timetracker-bot/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Repo defines storage operations for users and tracked events.
type Repo interface {
	GetUser(ctx context.Context, platformID int64) (*domain.User, error)
	InsertUser(ctx context.Context, u *domain.User) error
	UpdateUser(ctx context.Context, u *domain.User) error

	InsertEvent(ctx context.Context, e *domain.Event) error
	FindEvent(ctx context.Context, userID, messageID int64) (*domain.Event, error)
	UpdateEvent(ctx context.Context, e *domain.Event) error

	QueryRange(ctx context.Context, userID int64, from, to time.Time) ([]domain.Row, error)
	FirstTimestampOnDate(ctx context.Context, userID int64, day domain.Window, tag string) (*time.Time, error)
	FirstTimestampAfterDate(ctx context.Context, userID int64, after time.Time, tag string) (*time.Time, error)

	Close() error
}
