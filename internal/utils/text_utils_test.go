package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestProcessor() *TextProcessor {
	return NewTextProcessor(zap.NewNop())
}

func TestTruncateText(t *testing.T) {
	tp := newTestProcessor()

	short := "small text"
	assert.Equal(t, short, tp.TruncateText(short, 100))
	assert.Equal(t, short, tp.TruncateText(short, 0))
	assert.Equal(t, short, tp.TruncateText(short, -1))

	long := strings.Repeat("a", 50)
	truncated := tp.TruncateText(long, 10)
	assert.True(t, strings.HasPrefix(truncated, "aaaaaaaaaa"))
	assert.Contains(t, truncated, "Content truncated")
}

func TestTruncateTextKeepsUTF8Valid(t *testing.T) {
	tp := newTestProcessor()

	// 10 bytes of ASCII then a multi-byte rune the limit cuts in half
	text := strings.Repeat("a", 10) + "héllo wörld"
	truncated := tp.TruncateText(text, 12)
	assert.True(t, utf8.ValidString(truncated))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := newTestProcessor()

	valid := "perfectly fine ünïcode"
	assert.Equal(t, valid, tp.SanitizeUTF8(valid))

	invalid := "broken \xff\xfe bytes"
	sanitized := tp.SanitizeUTF8(invalid)
	assert.True(t, utf8.ValidString(sanitized))
	assert.Contains(t, sanitized, "broken")
	assert.Contains(t, sanitized, "bytes")
}

func TestProcessText(t *testing.T) {
	tp := newTestProcessor()

	processed := tp.ProcessText(strings.Repeat("x", 100)+"\xff", 50)
	assert.True(t, utf8.ValidString(processed))
	assert.True(t, strings.HasPrefix(processed, "xxxxx"))
}
