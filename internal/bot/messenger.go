package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"weatherbot/core/telegram/keyboard"
	"weatherbot/internal/conversation"
)

// pickCallbackKey identifies clarification-pick callbacks; the payload is
// the candidate index as a string, "-1" for "none of those".
const pickCallbackKey = "loc_pick"

// telegramMessenger delivers conversation replies through the bot API.
// It is used for reaper notifications as well, where no update context
// exists to reply to.
type telegramMessenger struct {
	bot *tele.Bot
}

func (m *telegramMessenger) SendText(userID int64, text string) error {
	_, err := m.bot.Send(&tele.User{ID: userID}, text)
	return err
}

func (m *telegramMessenger) SendChoices(userID int64, text string, options []conversation.Choice) error {
	buttons := make([]keyboard.InlineBtn, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   opt.Label,
			Unique: pickCallbackKey,
			Data:   strconv.Itoa(opt.Index),
		})
	}
	_, err := m.bot.Send(&tele.User{ID: userID}, text, keyboard.InlineButtons(buttons))
	return err
}
