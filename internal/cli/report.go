package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ykvlv/timetracker-bot/internal/domain"
	"github.com/ykvlv/timetracker-bot/internal/logger"
	"github.com/ykvlv/timetracker-bot/internal/store"
	"github.com/ykvlv/timetracker-bot/internal/tracker"
)

// Execute implements the go-flags Commander interface for LogCommand.
func (c *LogCommand) Execute(args []string) error {
	return withStore(c.globals, func(repo store.Repo) error {
		return c.executeWithStore(context.Background(), repo)
	})
}

// executeWithStore runs the log logic against a provided store (used by tests).
func (c *LogCommand) executeWithStore(ctx context.Context, repo store.Repo) error {
	svc, u, offset, err := prepare(ctx, c.globals, repo, c.User, c.Days, c.now)
	if err != nil {
		return err
	}
	lines, err := svc.DayLog(ctx, u, offset)
	if err != nil {
		return fmt.Errorf("day log: %w", err)
	}
	if len(lines) == 0 {
		_, err = fmt.Fprintln(c.out, "no entries")
		return err
	}
	_, err = fmt.Fprintln(c.out, strings.Join(lines, "\n"))
	return err
}

// Execute implements the go-flags Commander interface for StatCommand.
func (c *StatCommand) Execute(args []string) error {
	return withStore(c.globals, func(repo store.Repo) error {
		return c.executeWithStore(context.Background(), repo)
	})
}

// executeWithStore runs the stat logic against a provided store (used by tests).
func (c *StatCommand) executeWithStore(ctx context.Context, repo store.Repo) error {
	svc, u, offset, err := prepare(ctx, c.globals, repo, c.User, c.Days, c.now)
	if err != nil {
		return err
	}
	report, err := svc.DayStat(ctx, u, offset)
	if err != nil {
		return fmt.Errorf("day stat: %w", err)
	}
	_, err = fmt.Fprintln(c.out, report)
	return err
}

// withStore opens the configured store for the duration of fn.
func withStore(g *GlobalFlags, fn func(repo store.Repo) error) error {
	repo, err := store.Open(context.Background(), g.DBDriver, g.DBDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer repo.Close()
	return fn(repo)
}

func prepare(ctx context.Context, g *GlobalFlags, repo store.Repo, userID int64, days string, now func() time.Time) (*tracker.Service, *domain.User, int, error) {
	offset, err := domain.ParseDayOffset(days)
	if err != nil {
		return nil, nil, 0, err
	}
	log, err := logger.New(g.LogLevel)
	if err != nil {
		return nil, nil, 0, err
	}
	svc := tracker.New(repo, log)
	if now != nil {
		svc.WithClock(now)
	}
	u, err := repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, 0, fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return nil, nil, 0, err
	}
	return svc, u, offset, nil
}
