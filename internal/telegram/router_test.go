package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/timetracker-bot/internal/store"
	"github.com/ykvlv/timetracker-bot/internal/tracker"
)

// fakeBot records outgoing requests and hands out message ids.
type fakeBot struct {
	sent     []tgbotapi.Chattable
	answered []string
	nextID   int
	sendErr  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	b.nextID++
	return tgbotapi.Message{MessageID: 1000 + b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		b.answered = append(b.answered, cb.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) last(t *testing.T) tgbotapi.Chattable {
	t.Helper()
	require.NotEmpty(t, b.sent)
	return b.sent[len(b.sent)-1]
}

func (b *fakeBot) lastText(t *testing.T) string {
	t.Helper()
	msg, ok := b.last(t).(tgbotapi.MessageConfig)
	require.True(t, ok, "want MessageConfig, got %T", b.last(t))
	return msg.Text
}

const chatID = 42

var sentAt = time.Date(2025, time.May, 6, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*Router, *fakeBot, store.Repo) {
	t.Helper()
	repo, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "tt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	svc := tracker.New(repo, zap.NewNop()).WithClock(func() time.Time { return sentAt.Add(3 * time.Hour) })
	bot := &fakeBot{}
	return NewRouter(bot, zap.NewNop(), svc), bot, repo
}

func message(id int, text string, at time.Time) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: chatID, FirstName: "Ann"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Date:      int(at.Unix()),
		Text:      text,
	}
}

func send(r *Router, id int, text string, at time.Time) {
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: message(id, text, at)})
}

func TestTrack_EchoesAndStores(t *testing.T) {
	r, bot, repo := newTestRouter(t)
	ctx := context.Background()

	send(r, 1, "go #work", sentAt)
	assert.Equal(t, "⛭ go #work", bot.lastText(t))

	u, err := repo.GetUser(ctx, chatID)
	require.NoError(t, err)
	e, err := repo.FindEvent(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "go", e.Title)
	assert.True(t, sentAt.Equal(e.EventTime))
	require.NotNil(t, e.Payload.BotMessageID)
	assert.Equal(t, 1001, *e.Payload.BotMessageID)

	// redelivery does not echo twice
	send(r, 1, "go #work", sentAt)
	assert.Len(t, bot.sent, 1)
}

func TestEdit_UpdatesEcho(t *testing.T) {
	r, bot, repo := newTestRouter(t)
	ctx := context.Background()

	send(r, 1, "go #wrok", sentAt)
	r.HandleUpdate(ctx, tgbotapi.Update{EditedMessage: message(1, "go #work", sentAt)})

	edit, ok := bot.last(t).(tgbotapi.EditMessageTextConfig)
	require.True(t, ok, "want EditMessageTextConfig, got %T", bot.last(t))
	assert.Equal(t, 1001, edit.MessageID)
	assert.Equal(t, int64(chatID), edit.ChatID)
	assert.Equal(t, "⛭ go #work", edit.Text)

	u, err := repo.GetUser(ctx, chatID)
	require.NoError(t, err)
	e, err := repo.FindEvent(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"#work"}, e.Payload.Tags)
}

func TestStat_RendersMonospacedReport(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "#wake", sentAt)
	send(r, 2, "code #work", sentAt.Add(90*time.Minute))
	send(r, 3, "/stat", sentAt.Add(2*time.Hour))

	msg, ok := bot.last(t).(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Equal(t, "<pre>#work 1:30:00 code (1:30:00)\n\ntotal 1:30:00</pre>", msg.Text)
}

func TestLog_EmptyAndFilled(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "/log", sentAt)
	assert.Equal(t, emptyLogText, bot.lastText(t))

	send(r, 2, "tea #break", sentAt)
	send(r, 3, "/log 0", sentAt)
	assert.Equal(t, "09:00 tea #break", bot.lastText(t))

	send(r, 4, "/log yesterday", sentAt)
	assert.Equal(t, dayUsageText, bot.lastText(t))
}

func TestUTC_ValidatesBeforeTouchingStore(t *testing.T) {
	r, bot, repo := newTestRouter(t)

	send(r, 1, "/utc abc", sentAt)
	assert.Equal(t, utcUsageText, bot.lastText(t))
	_, err := repo.GetUser(context.Background(), chatID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	send(r, 2, "/utc +3", sentAt)
	assert.Equal(t, "UTC offset set to +3.", bot.lastText(t))
	u, err := repo.GetUser(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, 3, u.Settings.UTCOffset)
}

func TestSleep_SetShowClear(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "/sleep", sentAt)
	assert.Equal(t, sleepNoneText, bot.lastText(t))

	send(r, 2, "/sleep nope", sentAt)
	assert.Equal(t, sleepUsageText, bot.lastText(t))

	send(r, 3, "/sleep #sleep", sentAt)
	assert.Equal(t, "Day now starts at #sleep.", bot.lastText(t))

	send(r, 4, "/sleep", sentAt)
	assert.Contains(t, bot.lastText(t), "#sleep")

	send(r, 5, "/sleep off", sentAt)
	assert.Equal(t, sleepClearText, bot.lastText(t))
}

func TestCommands_Misc(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "/start", sentAt)
	assert.Equal(t, startText, bot.lastText(t))

	send(r, 2, "/hello@tt_bot", sentAt)
	assert.Equal(t, "Hello Ann", bot.lastText(t))

	send(r, 3, "/nope", sentAt)
	assert.Equal(t, unknownCommandText, bot.lastText(t))

	n := len(bot.sent)
	send(r, 4, "   ", sentAt)
	assert.Len(t, bot.sent, n, "blank messages are ignored")
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in, cmd, args string
	}{
		{"/LOG@my_bot  -2 ", "/log", "-2"},
		{"/log\n-1", "/log", "-1"},
		{"/stat\t-2", "/stat", "-2"},
		{"/help", "/help", ""},
	}
	for _, c := range cases {
		cmd, args := splitCommand(c.in)
		assert.Equal(t, c.cmd, cmd, c.in)
		assert.Equal(t, c.args, args, c.in)
	}
}

func TestLog_NewlineSeparatedArgument(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "/log\n-1", sentAt)
	assert.Equal(t, emptyLogText, bot.lastText(t))
}

func callback(id, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      id,
		From:    &tgbotapi.User{ID: chatID, FirstName: "Ann"},
		Message: &tgbotapi.Message{MessageID: 900, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func TestSettings_ShowsOffsetAndSleepTag(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "/settings", sentAt)
	assert.Equal(t, "Settings\n\nTimezone: UTC\nDay starts at: midnight", bot.lastText(t))
	msg := bot.last(t).(tgbotapi.MessageConfig)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, setUTCData, *kb.InlineKeyboard[0][0].CallbackData)

	send(r, 2, "/utc -5", sentAt)
	send(r, 3, "/sleep #sleep", sentAt)
	send(r, 4, "/status", sentAt)
	assert.Equal(t, "Settings\n\nTimezone: UTC-5\nDay starts at: #sleep", bot.lastText(t))
}

func TestUTCCallback_SetsOffset(t *testing.T) {
	r, bot, repo := newTestRouter(t)
	ctx := context.Background()

	r.HandleUpdate(ctx, callback("cb1", setUTCData))
	assert.Equal(t, "Your timezone is UTC. Pick an offset or send /utc <hours>:", bot.lastText(t))
	kb, ok := bot.last(t).(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "utc:+3", *kb.InlineKeyboard[1][0].CallbackData)

	r.HandleUpdate(ctx, callback("cb2", "utc:+3"))
	assert.Equal(t, "UTC offset set to +3.", bot.lastText(t))
	u, err := repo.GetUser(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, 3, u.Settings.UTCOffset)

	r.HandleUpdate(ctx, callback("cb3", "utc:+99"))
	assert.Equal(t, utcUsageText, bot.lastText(t))
	u, err = repo.GetUser(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, 3, u.Settings.UTCOffset)

	r.HandleUpdate(ctx, callback("cb4", "nope"))
	assert.Equal(t, []string{"cb1", "cb2", "cb3", "cb4"}, bot.answered)
}

func TestUTC_NoArgumentShowsPresets(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	send(r, 1, "/utc +2", sentAt)
	send(r, 2, "/utc", sentAt)
	assert.Equal(t, "Your timezone is UTC+2. Pick an offset or send /utc <hours>:", bot.lastText(t))
	_, ok := bot.last(t).(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.True(t, ok)
}

func TestLog_SplitsLongDay(t *testing.T) {
	r, bot, _ := newTestRouter(t)

	title := strings.Repeat("x", 90)
	for i := 0; i < 60; i++ {
		send(r, i+1, title+" #work", sentAt.Add(time.Duration(i)*time.Minute))
	}
	n := len(bot.sent)
	send(r, 100, "/log", sentAt)

	replies := bot.sent[n:]
	require.Len(t, replies, 2)
	var lines int
	for _, c := range replies {
		text := c.(tgbotapi.MessageConfig).Text
		assert.LessOrEqual(t, len(text), maxMessageLen)
		lines += strings.Count(text, "\n") + 1
	}
	assert.Equal(t, 60, lines)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"ab\ncd", "ef"}, splitMessage([]string{"ab", "cd", "ef"}, 5))
	assert.Equal(t, []string{"abc", "de", "f"}, splitMessage([]string{"abcde", "f"}, 3))
	assert.Equal(t, []string{"жжж", "ж"}, splitMessage([]string{"жжжж"}, 3))
	assert.Nil(t, splitMessage(nil, 10))
}

func TestSendFailureIsTolerated(t *testing.T) {
	r, bot, _ := newTestRouter(t)
	bot.sendErr = errors.New("telegram down")

	send(r, 1, "/log", sentAt)
	assert.Len(t, bot.sent, 1)
}
