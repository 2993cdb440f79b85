package scraper

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	// Registers the common mail charsets so non-UTF-8 parts decode.
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
)

// MailinglisteAdapter reads a mailing list mailbox over IMAP and turns
// every message into an entry. Deduplication happens downstream, so
// re-reading the whole mailbox on every run is fine.
type MailinglisteAdapter struct {
	Server   string
	Port     string
	Username string
	Password string

	// List display name, becomes the source name of every entry.
	ListName string
}

func NewMailinglisteAdapter() *MailinglisteAdapter {
	return &MailinglisteAdapter{
		Server:   envOr("IMAP_SERVER", ""),
		Port:     envOr("IMAP_PORT", "993"),
		Username: envOr("IMAP_USERNAME", ""),
		Password: envOr("IMAP_PASSWORD", ""),
		ListName: envOr("IMAP_LIST_NAME", "Mailingliste"),
	}
}

func (m *MailinglisteAdapter) Name() string {
	return "mailingliste/" + m.ListName
}

func (m *MailinglisteAdapter) Collect(ctx context.Context) ([]model.RawEntry, error) {
	if m.Server == "" {
		return nil, errors.New("IMAP_SERVER is not configured")
	}

	c, err := client.DialTLS(fmt.Sprintf("%s:%s", m.Server, m.Port), nil)
	if err != nil {
		return nil, errors.Wrap(err, "fail to connect to IMAP server")
	}
	defer c.Logout()

	if err := c.Login(m.Username, m.Password); err != nil {
		return nil, errors.Wrap(err, "fail to login to IMAP server")
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, errors.Wrap(err, "fail to select INBOX")
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var entries []model.RawEntry
	for msg := range messages {
		entry, err := m.parseMessage(msg, section)
		if err != nil {
			Logger.Log.Error("mailingliste: fail to parse message: ", err)
			continue
		}
		entries = append(entries, *entry)
	}
	if err := <-done; err != nil {
		return nil, errors.Wrap(err, "fail to fetch messages")
	}
	return entries, nil
}

// parseMessage decodes one message, keeping only the inline plain-text
// part as the body.
func (m *MailinglisteAdapter) parseMessage(msg *imap.Message, section *imap.BodySectionName) (*model.RawEntry, error) {
	body := msg.GetBody(section)
	if body == nil {
		return nil, errors.New("message has no body section")
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, errors.Wrap(err, "fail to open message")
	}

	subject, err := mr.Header.Subject()
	if err != nil {
		return nil, errors.Wrap(err, "fail to decode subject")
	}
	date, err := mr.Header.Date()
	if err != nil {
		return nil, errors.Wrap(err, "fail to read date")
	}

	text, err := firstPlainText(mr)
	if err != nil {
		return nil, err
	}

	title, audiences, locations := NormalizeSubject(subject)

	return &model.RawEntry{
		Link:                     fmt.Sprintf("mailto:%s?subject=%s", m.Username, title),
		Title:                    title,
		CreationTimestamp:        model.WireTime{Time: date},
		Body:                     CollapseLineBreaks(text),
		Locations:                locations,
		SourceType:               model.SourceTypeMailingliste,
		SourceName:               m.ListName,
		ManualAudienceCategories: audiences,
	}, nil
}

func firstPlainText(mr *mail.Reader) (string, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", errors.New("message has no plain-text part")
		}
		if err != nil {
			return "", errors.Wrap(err, "fail to walk message parts")
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil || !strings.HasPrefix(contentType, "text/plain") {
			continue
		}
		raw, err := io.ReadAll(part.Body)
		if err != nil {
			return "", errors.Wrap(err, "fail to read plain-text part")
		}
		return string(raw), nil
	}
}
