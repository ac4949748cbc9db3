// Package imap implements the mail source over IMAP. Messages are fetched
// read-only (peek) so ingestion never changes mailbox state.
package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	// Register charset decoders (windows-1252, iso-8859-*, koi8-r, etc.)
	_ "github.com/emersion/go-message/charset"

	"github.com/mikey/newsletter-rag/internal/core"
)

// Source is a MailSource backed by an IMAP mailbox
type Source struct {
	client  *imapclient.Client
	mailbox string
	logger  *zap.Logger
}

// NewSource connects to the IMAP server over TLS and logs in
func NewSource(server, username, password, mailbox string, logger *zap.Logger) (*Source, error) {
	client, err := imapclient.DialTLS(server, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", server, err)
	}
	if err := client.Login(username, password).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Source{
		client:  client,
		mailbox: mailbox,
		logger:  logger,
	}, nil
}

// Fetch returns up to max messages received since the given time, newest
// first
func (s *Source) Fetch(ctx context.Context, since time.Time, max int) ([]core.Message, error) {
	if _, err := s.client.Select(s.mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", s.mailbox, err)
	}

	// IMAP SINCE is day-granular; the exact cutoff is applied client-side
	searchDay := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())
	searchData, err := s.client.UIDSearch(&imap.SearchCriteria{Since: searchDay}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	// UIDs ascend with delivery order; keep the most recent ones
	if max > 0 && len(uids) > max {
		uids = uids[len(uids)-max:]
	}

	var uidSet imap.UIDSet
	uidSet.AddNum(uids...)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := s.client.Fetch(uidSet, &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})

	var msgs []core.Message
	for {
		if err := ctx.Err(); err != nil {
			fetchCmd.Close()
			return nil, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		var uid imap.UID
		var raw []byte
		for {
			item := msgData.Next()
			if item == nil {
				break
			}
			switch item := item.(type) {
			case imapclient.FetchItemDataUID:
				uid = item.UID
			case imapclient.FetchItemDataBodySection:
				data, err := io.ReadAll(item.Literal)
				if err == nil {
					raw = data
				}
			}
		}
		if len(raw) == 0 {
			continue
		}

		msg, err := s.parseMessage(raw, uid)
		if err != nil {
			s.logger.Warn("Skipping unparseable message",
				zap.Uint32("uid", uint32(uid)),
				zap.Error(err))
			continue
		}
		if !msg.ReceivedAt.IsZero() && msg.ReceivedAt.Before(since) {
			continue
		}
		msgs = append(msgs, *msg)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].ReceivedAt.After(msgs[j].ReceivedAt)
	})
	s.logger.Debug("Fetched messages",
		zap.String("mailbox", s.mailbox),
		zap.Int("count", len(msgs)))
	return msgs, nil
}

// parseMessage builds a core.Message from a raw RFC 5322 message
func (s *Source) parseMessage(raw []byte, uid imap.UID) (*core.Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	msg := &core.Message{
		ID: fmt.Sprintf("%s-%d", s.mailbox, uid),
	}
	if id, err := mr.Header.MessageID(); err == nil && id != "" {
		msg.ID = id
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.ReceivedAt = date
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.Sender = from[0].Name
		msg.SenderEmail = from[0].Address
		if msg.Sender == "" {
			msg.Sender = from[0].Address
		}
	}

	// Raw headers, order preserved; the classifier matches names
	// case-insensitively
	fields := mr.Header.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		msg.Headers = append(msg.Headers, core.Header{Name: fields.Key(), Value: value})
	}

	var plainText, htmlText string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := mime.ParseMediaType(header.Get("Content-Type"))
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch contentType {
		case "text/html":
			htmlText = string(body)
		default:
			if plainText == "" {
				plainText = string(body)
			}
		}
	}

	msg.BodyHTML = htmlText
	msg.BodyText = strings.TrimSpace(plainText)
	if msg.BodyText == "" && htmlText != "" {
		// Classification needs prose even for HTML-only newsletters
		if md, err := htmltomarkdown.ConvertString(htmlText); err == nil {
			msg.BodyText = strings.TrimSpace(md)
		}
	}
	if n := len(msg.BodyText); n > 0 {
		if n > 200 {
			n = 200
		}
		msg.Snippet = msg.BodyText[:n]
	}
	return msg, nil
}

// Close logs out and closes the connection
func (s *Source) Close() error {
	return s.client.Close()
}
