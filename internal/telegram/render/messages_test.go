package render_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/futig/spec-copilot/internal/telegram/render"
)

func TestSplitMessageShort(t *testing.T) {
	assert.Equal(t, []string{"hello"}, render.SplitMessage("  hello \n"))
	assert.Nil(t, render.SplitMessage("   "))
}

func TestSplitMessageLong(t *testing.T) {
	para := strings.Repeat("я", 3000)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := render.SplitMessage(text)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), render.MaxMessageLength)
		assert.Equal(t, para, c)
	}
}

func TestSplitMessageNoBreaks(t *testing.T) {
	chunks := render.SplitMessage(strings.Repeat("a", render.MaxMessageLength+10))
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], render.MaxMessageLength)
}
