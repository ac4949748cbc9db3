// Package segmenter splits cleaned documents into bounded, overlapping text
// windows for embedding. Boundaries are sentence-aware: windows are built
// from whole semantic units and consecutive windows share a bounded tail of
// overlap text so context survives the split.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mikey/newsletter-rag/internal/core"
)

// Defaults for window sizing, in characters
const (
	DefaultMaxWindowSize = 1000
	DefaultOverlapSize   = 200
)

// sentenceEnd marks sentence-terminal punctuation followed by whitespace.
// Best-effort boundary detection: abbreviations and decimals will sometimes
// split early, which only moves a window boundary and never loses text.
var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// Segmenter is a stateless document-to-window transform
type Segmenter struct {
	maxWindowSize int
	overlapSize   int
}

// New creates a segmenter. Sizes are validated here: a non-positive window
// size, a negative overlap, or an overlap that is not strictly smaller than
// the window size is a caller bug, not a runtime condition.
func New(maxWindowSize, overlapSize int) (*Segmenter, error) {
	if maxWindowSize <= 0 {
		return nil, fmt.Errorf("max window size must be positive, got %d", maxWindowSize)
	}
	if overlapSize < 0 {
		return nil, fmt.Errorf("overlap size must not be negative, got %d", overlapSize)
	}
	if overlapSize >= maxWindowSize {
		return nil, fmt.Errorf("overlap size %d must be smaller than max window size %d", overlapSize, maxWindowSize)
	}
	return &Segmenter{
		maxWindowSize: maxWindowSize,
		overlapSize:   overlapSize,
	}, nil
}

// Segment splits a document into ordered windows. An empty document yields
// no windows; a document that fits the window size yields exactly one.
// Window IDs derive from (source message id, index), so segmenting the same
// input again produces identical IDs.
func (s *Segmenter) Segment(doc *core.CleanedDocument) []core.Window {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil
	}

	if len(text) <= s.maxWindowSize {
		return []core.Window{s.newWindow(doc, 0, 1, text)}
	}

	texts := s.accumulate(splitUnits(text))

	windows := make([]core.Window, 0, len(texts))
	for i, t := range texts {
		windows = append(windows, s.newWindow(doc, i, len(texts), t))
	}
	return windows
}

// accumulate greedily packs units into windows. When adding a unit would
// exceed the window size, the current window is closed and the next one is
// seeded with a bounded tail of overlap text.
func (s *Segmenter) accumulate(units []string) []string {
	var texts []string
	var current []string
	currentLen := 0

	for _, unit := range units {
		if currentLen+len(unit) > s.maxWindowSize && len(current) > 0 {
			texts = append(texts, strings.Join(current, " "))

			seed := overlapSeed(current, s.overlapSize)
			if seed != "" {
				current = []string{seed}
				currentLen = len(seed)
			} else {
				current = nil
				currentLen = 0
			}
		}
		current = append(current, unit)
		currentLen += len(unit) + 1 // +1 for the joining space
	}

	if len(current) > 0 {
		texts = append(texts, strings.Join(current, " "))
	}
	return texts
}

// overlapSeed builds the context carried into the next window from the last
// one or two units of the closed window, truncated from the left so it never
// exceeds the overlap budget.
func overlapSeed(units []string, overlapSize int) string {
	if overlapSize == 0 || len(units) == 0 {
		return ""
	}
	seed := units[len(units)-1]
	if len(units) >= 2 {
		seed = units[len(units)-2] + " " + seed
	}
	if len(seed) > overlapSize {
		seed = tail(seed, overlapSize)
	}
	return seed
}

// tail returns at most n trailing bytes of s, advanced to a rune boundary
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	t := s[len(s)-n:]
	for len(t) > 0 && !utf8.RuneStart(t[0]) {
		t = t[1:]
	}
	return t
}

func (s *Segmenter) newWindow(doc *core.CleanedDocument, index, total int, text string) core.Window {
	return core.Window{
		ID:              fmt.Sprintf("%s_%d", doc.SourceMessageID, index),
		Text:            strings.TrimSpace(text),
		Index:           index,
		TotalWindows:    total,
		SourceMessageID: doc.SourceMessageID,
		SourceTitle:     doc.SourceTitle,
		SourceSender:    doc.SourceSender,
		SourceDate:      doc.SourceDate,
	}
}

// splitUnits splits text into semantic units: sentences, further divided at
// paragraph breaks. Empty units are dropped after trimming. A unit longer
// than the window size is never split further; it becomes its own oversized
// window, preserving semantic integrity over the strict size bound.
func splitUnits(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[last:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}

	var units []string
	for _, sentence := range sentences {
		for _, part := range strings.Split(sentence, "\n\n") {
			part = strings.TrimSpace(part)
			if part != "" {
				units = append(units, part)
			}
		}
	}
	return units
}
