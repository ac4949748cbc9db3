package segmenter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/newsletter-rag/internal/core"
)

func testDoc(text string) *core.CleanedDocument {
	return &core.CleanedDocument{
		Title:           "Test Newsletter",
		Text:            text,
		SourceMessageID: "msg-1",
		SourceTitle:     "Test Newsletter",
		SourceSender:    "Writer <writer@example.org>",
		SourceDate:      "2026-08-01T09:00:00Z",
	}
}

// longText builds prose from fixed-width sentences so overlap boundaries are
// predictable
func longText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Sentence number %04d speaks plainly about one idea. ", i)
	}
	return strings.TrimSpace(b.String())
}

func TestNewValidatesSizes(t *testing.T) {
	tests := []struct {
		name      string
		maxWindow int
		overlap   int
		wantErr   bool
	}{
		{"defaults", DefaultMaxWindowSize, DefaultOverlapSize, false},
		{"zero overlap", 100, 0, false},
		{"zero window", 0, 0, true},
		{"negative window", -1, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals window", 100, 100, true},
		{"overlap exceeds window", 100, 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.maxWindow, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSegmentEmptyDocument(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	assert.Nil(t, s.Segment(testDoc("")))
	assert.Nil(t, s.Segment(testDoc("   \n\t  ")))
}

func TestSegmentSingleWindow(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	text := "A short update. Nothing here comes close to the window size."
	windows := s.Segment(testDoc(text))

	require.Len(t, windows, 1)
	assert.Equal(t, "msg-1_0", windows[0].ID)
	assert.Equal(t, text, windows[0].Text)
	assert.Equal(t, 0, windows[0].Index)
	assert.Equal(t, 1, windows[0].TotalWindows)
	assert.Equal(t, "Test Newsletter", windows[0].SourceTitle)
	assert.Equal(t, "Writer <writer@example.org>", windows[0].SourceSender)
}

func TestSegmentLongDocument(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	doc := testDoc(longText(48)) // ~2.4x the window size
	windows := s.Segment(doc)

	require.GreaterOrEqual(t, len(windows), 3)
	for i, w := range windows {
		assert.LessOrEqual(t, len(w.Text), 1000, "window %d exceeds size bound", i)
		assert.Equal(t, i, w.Index)
		assert.Equal(t, len(windows), w.TotalWindows)
		assert.Equal(t, fmt.Sprintf("msg-1_%d", i), w.ID)
		assert.Equal(t, doc.SourceMessageID, w.SourceMessageID)
	}
}

func TestSegmentOverlapCarriesContext(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	windows := s.Segment(testDoc(longText(48)))
	require.GreaterOrEqual(t, len(windows), 2)

	for i := 1; i < len(windows); i++ {
		prev, next := windows[i-1], windows[i]
		// The next window opens with the last two sentences of the
		// previous one
		locs := sentenceEnd.FindAllStringIndex(next.Text, 2)
		require.Len(t, locs, 2)
		seed := next.Text[:locs[1][0]+1]
		assert.True(t, strings.HasSuffix(prev.Text, seed),
			"window %d does not share its opening with window %d", i, i-1)
		assert.LessOrEqual(t, len(seed), 200, "overlap seed exceeds the budget")
	}
}

func TestSegmentCoversAllText(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	const sentences = 48
	windows := s.Segment(testDoc(longText(sentences)))

	joined := strings.Join(windowTexts(windows), " ")
	for i := 0; i < sentences; i++ {
		marker := fmt.Sprintf("Sentence number %04d", i)
		assert.Contains(t, joined, marker)
	}
}

func TestSegmentIDsAreDeterministic(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	doc := testDoc(longText(48))
	first := windowIDs(s.Segment(doc))
	second := windowIDs(s.Segment(doc))
	assert.Equal(t, first, second)
}

func TestSegmentOversizedSentenceKeptWhole(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	long := strings.Repeat("x", 250)
	text := long + ". And then a short sentence follows here."
	windows := s.Segment(testDoc(text))

	require.GreaterOrEqual(t, len(windows), 2)
	// The oversized sentence is never split mid-word
	assert.Contains(t, windows[0].Text, long)
}

func TestSegmentParagraphBreaksAreBoundaries(t *testing.T) {
	s, err := New(60, 0)
	require.NoError(t, err)

	text := "First paragraph without terminal punctuation\n\nSecond paragraph also plain\n\nThird paragraph rounds it out"
	windows := s.Segment(testDoc(text))

	require.GreaterOrEqual(t, len(windows), 2)
	for _, w := range windows {
		assert.NotContains(t, w.Text, "\n\n")
	}
}

func TestSegmentZeroOverlap(t *testing.T) {
	s, err := New(1000, 0)
	require.NoError(t, err)

	windows := s.Segment(testDoc(longText(48)))
	require.GreaterOrEqual(t, len(windows), 2)

	// Without overlap no sentence appears in two windows
	seen := map[string]int{}
	for _, w := range windows {
		for _, m := range strings.Split(w.Text, ". ") {
			if strings.HasPrefix(m, "Sentence number ") {
				seen[m[:20]]++
			}
		}
	}
	for marker, count := range seen {
		assert.Equal(t, 1, count, "sentence %q appears in %d windows", marker, count)
	}
}

func windowTexts(windows []core.Window) []string {
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = w.Text
	}
	return out
}

func windowIDs(windows []core.Window) []string {
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = w.ID
	}
	return out
}
