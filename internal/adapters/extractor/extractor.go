// Package extractor turns raw newsletter bodies into clean prose. Main
// content is pulled with readability; when that fails the HTML is converted
// to markdown instead, which is close enough to prose for segmentation.
package extractor

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/mikey/newsletter-rag/internal/core"
)

// ErrNoContent is returned when a message yields too little text to keep
var ErrNoContent = errors.New("no extractable content")

// minContentLength is the minimum cleaned-text size worth indexing
const minContentLength = 50

var (
	lineSpaceRe = regexp.MustCompile(`\s+`)
	separatorRe = regexp.MustCompile(`^[-=_]{10,}`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)

	// Common newsletter footer lines, stripped to end of line
	footerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(unsubscribe|update preferences|manage preferences).*$`),
		regexp.MustCompile(`(?im)(sent to|you received this).*$`),
		regexp.MustCompile(`(?im)(view in browser|view online).*$`),
		regexp.MustCompile(`(?im)©\s*\d{4}.*$`),
		regexp.MustCompile(`(?im)all rights reserved.*$`),
	}

	titlePrefixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(fwd?|re|fw):\s*`),
		regexp.MustCompile(`^\[.+?\]\s*`),
	}

	// readability wants a document URL; newsletters have none
	baseURL, _ = url.Parse("https://newsletter.invalid/")
)

// Extractor implements the ContentExtractor port
type Extractor struct {
	logger *zap.Logger
}

// New creates a new extractor
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the cleaned document for a message, preferring the HTML
// body over plain text
func (e *Extractor) Extract(msg *core.Message) (*core.CleanedDocument, error) {
	var text string
	if msg.BodyHTML != "" {
		text = e.fromHTML(msg.BodyHTML)
		if strings.TrimSpace(text) == "" {
			text = msg.BodyText
		}
	} else {
		text = msg.BodyText
	}

	cleaned := cleanText(text)
	if len(cleaned) < minContentLength {
		return nil, ErrNoContent
	}

	return &core.CleanedDocument{
		Title:           deriveTitle(msg.Subject),
		Text:            cleaned,
		WordCount:       len(strings.Fields(cleaned)),
		SourceMessageID: msg.ID,
		SourceTitle:     deriveTitle(msg.Subject),
		SourceSender:    formatSender(msg),
		SourceDate:      formatDate(msg.ReceivedAt),
	}, nil
}

// fromHTML extracts main content with readability, falling back to a
// markdown conversion of the whole document
func (e *Extractor) fromHTML(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), baseURL)
	if err == nil {
		text := strings.TrimSpace(article.TextContent)
		if len(text) >= minContentLength {
			return text
		}
	} else {
		e.logger.Debug("Readability extraction failed", zap.Error(err))
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		e.logger.Debug("Markdown fallback failed", zap.Error(err))
		return ""
	}
	return md
}

// cleanText normalizes whitespace, drops separator lines and strips common
// footer boilerplate while keeping paragraph breaks
func cleanText(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(lineSpaceRe.ReplaceAllString(line, " "))
		if line == "" || separatorRe.MatchString(line) {
			// Preserve at most one blank line between paragraphs
			if line == "" && len(cleaned) > 0 && cleaned[len(cleaned)-1] != "" {
				cleaned = append(cleaned, "")
			}
			continue
		}
		cleaned = append(cleaned, line)
	}

	text = strings.Join(cleaned, "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	for _, re := range footerRes {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// deriveTitle builds a document title from the subject line
func deriveTitle(subject string) string {
	title := strings.TrimSpace(subject)
	for _, re := range titlePrefixRes {
		title = re.ReplaceAllString(title, "")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled Newsletter"
	}
	return title
}

func formatSender(msg *core.Message) string {
	if msg.Sender != "" && msg.Sender != msg.SenderEmail {
		return fmt.Sprintf("%s <%s>", msg.Sender, msg.SenderEmail)
	}
	return msg.SenderEmail
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
