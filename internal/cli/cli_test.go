package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/timetracker-bot/internal/domain"
	"github.com/ykvlv/timetracker-bot/internal/store"
	"github.com/ykvlv/timetracker-bot/internal/tracker"
)

var clock = func() time.Time { return time.Date(2025, time.May, 6, 12, 0, 0, 0, time.UTC) }

// seedStore creates a store with user 42 and two entries on May 5.
func seedStore(t *testing.T) (string, store.Repo) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tt.db")
	repo, err := store.Open(context.Background(), store.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	svc := tracker.New(repo, zap.NewNop())
	u, err := svc.EnsureUser(ctx, 42, domain.Profile{FirstName: "Ann"})
	require.NoError(t, err)
	for i, m := range []struct {
		at   time.Time
		text string
	}{
		{time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC), "wake #morning"},
		{time.Date(2025, time.May, 5, 9, 15, 0, 0, time.UTC), "code #work"},
	} {
		_, _, err := svc.Track(ctx, u, tracker.Message{MessageID: int64(i + 1), Text: m.text, Date: m.at})
		require.NoError(t, err)
	}
	return path, repo
}

func TestBuildParser_RegistersCommands(t *testing.T) {
	parser, _, cmds := buildParser(&bytes.Buffer{})
	assert.NotNil(t, parser.Find("log"))
	assert.NotNil(t, parser.Find("stat"))
	assert.NotNil(t, cmds.Log)
	assert.NotNil(t, cmds.Stat)
}

func TestStatCommand_PrintsReport(t *testing.T) {
	_, repo := seedStore(t)
	var out bytes.Buffer
	cmd := &StatCommand{User: 42, Days: "-1", globals: &GlobalFlags{LogLevel: "error"}, out: &out, now: clock}

	require.NoError(t, cmd.executeWithStore(context.Background(), repo))
	assert.Equal(t, "#work 1:15:00 code (1:15:00)\n\ntotal 1:15:00\n", out.String())
}

func TestLogCommand_PrintsEntries(t *testing.T) {
	_, repo := seedStore(t)
	var out bytes.Buffer
	cmd := &LogCommand{User: 42, Days: "-1", globals: &GlobalFlags{LogLevel: "error"}, out: &out, now: clock}

	require.NoError(t, cmd.executeWithStore(context.Background(), repo))
	assert.Equal(t, "08:00 wake #morning\n09:15 code #work\n", out.String())

	out.Reset()
	cmd.Days = "0"
	require.NoError(t, cmd.executeWithStore(context.Background(), repo))
	assert.Equal(t, "no entries\n", out.String())
}

func TestLogCommand_InvalidDays(t *testing.T) {
	_, repo := seedStore(t)
	cmd := &LogCommand{User: 42, Days: "soon", globals: &GlobalFlags{LogLevel: "error"}, out: &bytes.Buffer{}, now: clock}
	assert.ErrorIs(t, cmd.executeWithStore(context.Background(), repo), domain.ErrInvalidDayOffset)
}

func TestRunWithArgs_UnknownUser(t *testing.T) {
	path, _ := seedStore(t)
	err := RunWithArgs([]string{"--db-dsn", path, "stat", "--user", "7"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user 7 not found")
}

func TestRunWithArgs_Help(t *testing.T) {
	assert.NoError(t, RunWithArgs([]string{"--help"}, &bytes.Buffer{}))
}
