package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Telegram limit for a single text message
const MaxMessageLength = 4096

const (
	MsgWelcome = `👋 Hi! I help turn a project idea into a well scoped challenge specification.

Tell me what you are building and what you want a challenge to deliver. I will:
• help you narrow the scope
• pick a platform and challenge type with you
• walk through every field of the specification`

	MsgHelp = `Commands:
/start - start a new conversation
/reset - discard the current conversation
/spec - send the finished specification as a file
/help - show this help

If you are unsure what a field means, ask me about it instead of answering.`

	MsgReset          = "🧹 Conversation cleared. Send a message to start again."
	MsgNothingToReset = "There is no conversation to reset. Just send a message to start."
	MsgSpecNotReady   = "The specification is not finished yet. Keep answering and I will tell you when it is ready."
	MsgSpecReady      = "✅ Your specification is ready. Use /spec to download it."
	MsgUnknownCommand = "❌ Unknown command. Use /help"
	MsgTextOnly       = "I can only read text messages."

	ErrGeneric = "❌ Something went wrong. Please try again or use /reset."
)

// RateLimitWarning returns the warning for the n-th rate limit hit in a row
func RateLimitWarning(n int) string {
	switch {
	case n <= 1:
		return "⚠️ Too many messages. Please slow down a little."
	case n == 2:
		return "⚠️ Rate limit exceeded. Wait about 30 seconds before the next message."
	default:
		return "🛑 You are sending messages too often. Please wait a minute."
	}
}

// SpecFilename names the exported specification document
func SpecFilename(chatID int64, ext string) string {
	return fmt.Sprintf("challenge-spec-%d%s", chatID, ext)
}

// SplitMessage splits text into chunks that fit a Telegram message,
// preferring paragraph and line boundaries.
func SplitMessage(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for utf8.RuneCountInString(text) > MaxMessageLength {
		cut := string([]rune(text)[:MaxMessageLength])

		idx := strings.LastIndex(cut, "\n\n")
		if idx <= 0 {
			idx = strings.LastIndex(cut, "\n")
		}
		if idx <= 0 {
			idx = len(cut)
		}

		chunks = append(chunks, strings.TrimSpace(text[:idx]))
		text = strings.TrimSpace(text[idx:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
