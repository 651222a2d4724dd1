package handlers

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const threadPrefix = "tg-"

// Message represents a normalized Telegram message
type Message struct {
	ChatID      int64
	UserID      int64
	MessageID   int
	Text        string
	Command     string
	CommandArgs string
}

// FromTelegram normalizes an incoming message
func FromTelegram(m *tgbotapi.Message) *Message {
	msg := &Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.CommandArgs = m.CommandArguments()
	}
	return msg
}

// ThreadID maps a chat to its conversation thread. One chat holds one conversation.
func ThreadID(chatID int64) string {
	return threadPrefix + strconv.FormatInt(chatID, 10)
}
