package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/timetracker-bot/internal/domain"
	"github.com/ykvlv/timetracker-bot/internal/tracker"
)

// ensureUser makes sure a user row exists for the sender.
func (r *Router) ensureUser(ctx context.Context, from *tgbotapi.User) (*domain.User, error) {
	return r.svc.EnsureUser(ctx, from.ID, domain.Profile{
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: from.LanguageCode,
		IsBot:        from.IsBot,
	})
}

// storeFailed logs a storage error and tells the user.
func (r *Router) storeFailed(chatID int64, what string, err error) {
	r.log.Error(what+" failed", zap.Error(err), zap.Int64("chat_id", chatID))
	r.sendText(chatID, storeErrorText)
}

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// sendLines sends lines in as few messages as the Telegram length limit allows.
func (r *Router) sendLines(chatID int64, lines []string) {
	for _, chunk := range splitMessage(lines, maxMessageLen) {
		r.sendText(chatID, chunk)
	}
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// splitMessage joins lines with newlines into chunks of at most limit runes.
// A single line longer than limit is cut into pieces.
func splitMessage(lines []string, limit int) []string {
	var (
		out  []string
		b    strings.Builder
		size int
	)
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
			size = 0
		}
	}
	for _, line := range lines {
		for utf8.RuneCountInString(line) > limit {
			flush()
			cut := runeOffset(line, limit)
			out = append(out, line[:cut])
			line = line[cut:]
		}
		n := utf8.RuneCountInString(line)
		if size > 0 && size+1+n > limit {
			flush()
		}
		if size > 0 {
			b.WriteByte('\n')
			size++
		}
		b.WriteString(line)
		size += n
	}
	flush()
	return out
}

// runeOffset returns the byte offset of the n-th rune of s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

// sendPre sends text as a monospaced block so columns stay aligned.
func (r *Router) sendPre(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "<pre>"+html.EscapeString(text)+"</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func toMessage(msg *tgbotapi.Message) tracker.Message {
	return tracker.Message{
		MessageID: int64(msg.MessageID),
		ChatID:    msg.Chat.ID,
		Text:      strings.TrimSpace(msg.Text),
		Date:      time.Unix(int64(msg.Date), 0).UTC(),
	}
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := r.ensureUser(ctx, msg.From); err != nil {
		r.storeFailed(msg.Chat.ID, "ensureUser", err)
		return
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, startText)
	reply.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(reply)
}

func (r *Router) handleHello(msg *tgbotapi.Message) {
	r.sendText(msg.Chat.ID, "Hello "+msg.From.FirstName)
}

// --- Tracking ---

func (r *Router) handleTrack(ctx context.Context, msg *tgbotapi.Message, text string) {
	chatID := msg.Chat.ID
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	e, created, err := r.svc.Track(ctx, u, toMessage(msg))
	if err != nil {
		r.storeFailed(chatID, "track", err)
		return
	}
	if !created {
		// redelivered update
		return
	}

	sent, err := r.bot.Send(tgbotapi.NewMessage(chatID, trackedPrefix+text))
	if err != nil {
		r.log.Warn("echo failed", zap.Error(err), zap.Int64("chat_id", chatID))
		return
	}
	if err := r.svc.AttachReply(ctx, e, sent.MessageID); err != nil {
		r.log.Error("attach reply failed", zap.Error(err), zap.Int64("event_id", e.ID))
	}
}

func (r *Router) handleEdit(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	m := toMessage(msg)
	e, err := r.svc.Edit(ctx, u, m)
	if err != nil {
		r.storeFailed(chatID, "edit", err)
		return
	}

	if id := e.Payload.BotMessageID; id != nil {
		if _, err := r.bot.Send(tgbotapi.NewEditMessageText(e.Payload.ChatID, *id, trackedPrefix+m.Text)); err != nil {
			r.log.Warn("edit echo failed", zap.Error(err), zap.Int("bot_message_id", *id))
		}
		return
	}
	sent, err := r.bot.Send(tgbotapi.NewMessage(chatID, trackedPrefix+m.Text))
	if err != nil {
		r.log.Warn("echo failed", zap.Error(err), zap.Int64("chat_id", chatID))
		return
	}
	if err := r.svc.AttachReply(ctx, e, sent.MessageID); err != nil {
		r.log.Error("attach reply failed", zap.Error(err), zap.Int64("event_id", e.ID))
	}
}

// --- Reports ---

func (r *Router) handleLog(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	offset, err := domain.ParseDayOffset(args)
	if err != nil {
		r.sendText(chatID, dayUsageText)
		return
	}
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	lines, err := r.svc.DayLog(ctx, u, offset)
	if err != nil {
		r.storeFailed(chatID, "day log", err)
		return
	}
	if len(lines) == 0 {
		r.sendText(chatID, emptyLogText)
		return
	}
	r.sendLines(chatID, lines)
}

func (r *Router) handleStat(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	offset, err := domain.ParseDayOffset(args)
	if err != nil {
		r.sendText(chatID, dayUsageText)
		return
	}
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	report, err := r.svc.DayStat(ctx, u, offset)
	if err != nil {
		r.storeFailed(chatID, "day stat", err)
		return
	}
	r.sendPre(chatID, report)
}

// --- Settings ---

func (r *Router) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	dayStart := midnightText
	if u.Settings.HasSleepTag() {
		dayStart = *u.Settings.SleepTag
	}
	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf(settingsFmt, domain.UserZone(u.Settings.UTCOffset), dayStart))
	reply.ReplyMarkup = settingsInlineKeyboard()
	if _, err := r.bot.Send(reply); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (r *Router) handleUTC(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	if args == "" {
		u, err := r.ensureUser(ctx, msg.From)
		if err != nil {
			r.storeFailed(chatID, "ensureUser", err)
			return
		}
		r.sendUTCPresets(chatID, fmt.Sprintf(utcShowFmt, domain.UserZone(u.Settings.UTCOffset)))
		return
	}
	hours, err := domain.ParseUTCOffset(args)
	if err != nil {
		r.sendText(chatID, utcUsageText)
		return
	}
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	if err := r.svc.SetUTCOffset(ctx, u, hours); err != nil {
		r.storeFailed(chatID, "set utc offset", err)
		return
	}
	r.sendText(chatID, fmt.Sprintf(utcSetFmt, hours))
}

func (r *Router) handleSleep(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	var tag string
	if args != "" && args != "off" {
		var err error
		if tag, err = domain.ValidateSleepTag(args); err != nil {
			r.sendText(chatID, sleepUsageText)
			return
		}
	}
	u, err := r.ensureUser(ctx, msg.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}

	if args == "" {
		if u.Settings.HasSleepTag() {
			r.sendText(chatID, fmt.Sprintf(sleepShowFmt, *u.Settings.SleepTag))
		} else {
			r.sendText(chatID, sleepNoneText)
		}
		return
	}
	if err := r.svc.SetSleepTag(ctx, u, tag); err != nil {
		r.storeFailed(chatID, "set sleep tag", err)
		return
	}
	if tag == "" {
		r.sendText(chatID, sleepClearText)
		return
	}
	r.sendText(chatID, fmt.Sprintf(sleepSetFmt, tag))
}

// --- UTC offset flow ---

func (r *Router) sendUTCPresets(chatID int64, text string) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = utcPresetsKeyboard()
	if _, err := r.bot.Send(reply); err != nil {
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (r *Router) askUTCPresets(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	_ = r.answerCallback(cb.ID, "")
	chatID := cb.Message.Chat.ID
	u, err := r.ensureUser(ctx, cb.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	r.sendUTCPresets(chatID, fmt.Sprintf(utcShowFmt, domain.UserZone(u.Settings.UTCOffset)))
}

func (r *Router) handleUTCCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, val string) {
	_ = r.answerCallback(cb.ID, "")
	chatID := cb.Message.Chat.ID
	hours, err := domain.ParseUTCOffset(val)
	if err != nil {
		r.sendText(chatID, utcUsageText)
		return
	}
	u, err := r.ensureUser(ctx, cb.From)
	if err != nil {
		r.storeFailed(chatID, "ensureUser", err)
		return
	}
	if err := r.svc.SetUTCOffset(ctx, u, hours); err != nil {
		r.storeFailed(chatID, "set utc offset", err)
		return
	}
	r.sendText(chatID, fmt.Sprintf(utcSetFmt, hours))
}
