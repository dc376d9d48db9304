package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Echo prefix of the bot's reply to a tracked message.
const trackedPrefix = "⛭ "

// Telegram rejects longer message texts.
const maxMessageLen = 4096

// Callback data of inline buttons.
const (
	setUTCData    = "set_utc"
	utcDataPrefix = "utc:"
)

var utcPresets = []int{-5, 0, 1, 2, 3, 4, 5, 8}

// UI texts in English
const (
	startText = "Hello, it is a time tracker bot. Just type something with tag #, " +
		"for example #wake_up or time tracker #mini_project. For additional help use /help"
	helpText = "Send any text with #tags to log what you are doing now; " +
		"the time since your previous entry is credited to its tags.\n" +
		"Edit a message to fix it.\n\n" +
		"/log [days] — entries of a day (0 today, -1 yesterday, …)\n" +
		"/stat [days] — time per tag for a day\n" +
		"/utc [hours] — show or set your UTC offset, e.g. /utc +3\n" +
		"/settings — current settings\n" +
		"/sleep [#tag|off] — start your day at a tag instead of midnight"

	unknownCommandText = "Unknown command. See /help."
	storeErrorText     = "Storage is unavailable right now. Please try again later."
	dayUsageText       = "Invalid day. Use 0 for today, -1 for yesterday and so on."
	utcUsageText       = "Invalid offset. Use whole hours from -12 to +14, e.g. /utc +3"
	sleepUsageText     = "Invalid tag. Use a single #tag, e.g. /sleep #sleep, or /sleep off"
	emptyLogText       = "No entries for this day."

	utcSetFmt      = "UTC offset set to %+d."
	utcShowFmt     = "Your timezone is %s. Pick an offset or send /utc <hours>:"
	settingsFmt    = "Settings\n\nTimezone: %s\nDay starts at: %s"
	midnightText   = "midnight"
	sleepSetFmt    = "Day now starts at %s."
	sleepShowFmt   = "Day starts at %s. Use /sleep off to start at midnight."
	sleepNoneText  = "Day starts at midnight. Set a tag with /sleep #tag."
	sleepClearText = "Day now starts at midnight."
)

// mainMenuKeyboard builds a reply keyboard with the report commands.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/log"),
			tgbotapi.NewKeyboardButton("/stat"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
}

// settingsInlineKeyboard offers the editable settings.
func settingsInlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 UTC offset", setUTCData),
		),
	)
}

// utcPresetsKeyboard lays the preset offsets out four per row.
func utcPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, h := range utcPresets {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("UTC%+d", h),
			fmt.Sprintf("%s%+d", utcDataPrefix, h),
		))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
