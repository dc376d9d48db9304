package telegram

import (
	"context"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/timetracker-bot/internal/tracker"
)

// Bot is the part of *tgbotapi.BotAPI the router needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Router wires Telegram updates to handlers. It keeps no per-chat state.
type Router struct {
	bot Bot
	log *zap.Logger
	svc *tracker.Service
}

// NewRouter creates a new Telegram router.
func NewRouter(bot Bot, log *zap.Logger, svc *tracker.Service) *Router {
	return &Router{bot: bot, log: log, svc: svc}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		switch data := cb.Data; {
		case data == setUTCData:
			r.askUTCPresets(ctx, cb)
		case strings.HasPrefix(data, utcDataPrefix):
			r.handleUTCCallback(ctx, cb, strings.TrimPrefix(data, utcDataPrefix))
		default:
			// unknown callback
			_ = r.answerCallback(cb.ID, "")
		}
		return
	}

	if upd.EditedMessage != nil {
		msg := upd.EditedMessage
		if msg.From == nil || strings.TrimSpace(msg.Text) == "" || isCommand(msg.Text) {
			return
		}
		r.handleEdit(ctx, msg)
		return
	}

	if upd.Message == nil || upd.Message.From == nil {
		return
	}
	msg := upd.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		// stickers, photos and the like carry no text to track
		return
	}
	if !isCommand(text) {
		r.handleTrack(ctx, msg, text)
		return
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "/start":
		r.handleStart(ctx, msg)
	case "/hello":
		r.handleHello(msg)
	case "/help":
		r.sendText(msg.Chat.ID, helpText)
	case "/settings", "/status":
		r.handleSettings(ctx, msg)
	case "/log":
		r.handleLog(ctx, msg, args)
	case "/stat":
		r.handleStat(ctx, msg, args)
	case "/utc":
		r.handleUTC(ctx, msg, args)
	case "/sleep":
		r.handleSleep(ctx, msg, args)
	default:
		r.sendText(msg.Chat.ID, unknownCommandText)
	}
}

func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// splitCommand returns the command without a @botname suffix and the rest.
func splitCommand(text string) (cmd, args string) {
	cmd = text
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		cmd, args = text[:i], text[i:]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
