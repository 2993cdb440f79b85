package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/gocolly/colly"
	"github.com/pkg/errors"
)

const (
	// Subjects of bulk issues start with this marker in the archive.
	BulkSubjectMarker = "Sammel-Rundmail"

	// Section headings containing this word mark the job-offer part of a
	// bulk issue.
	jobHeadingMarker = "Stellenangebote"

	defaultArchiveURL = "https://rundmail.campushub.de/archiv"
)

// RundmailAdapter walks the paginated mailing archive. Bulk issues are
// split into one entry per embedded message, single issues become one
// entry. The walk short-circuits at the newest timestamp the backend
// already ingested (the date probe), so each run does bounded work.
type RundmailAdapter struct {
	ArchiveURL string

	Latest    time.Time
	HasLatest bool

	client *http.Client
}

func NewRundmailAdapter(latest time.Time, hasLatest bool) *RundmailAdapter {
	archiveURL := defaultArchiveURL
	if fromEnv := strings.TrimSpace(envOr("RUNDMAIL_ARCHIVE_URL", "")); fromEnv != "" {
		archiveURL = fromEnv
	}
	return &RundmailAdapter{
		ArchiveURL: archiveURL,
		Latest:     latest,
		HasLatest:  hasLatest,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *RundmailAdapter) Name() string {
	return "rundmail"
}

func (r *RundmailAdapter) Collect(ctx context.Context) ([]model.RawEntry, error) {
	var entries []model.RawEntry
	stop := false

	c := colly.NewCollector()

	c.OnHTML("table.archiv tr.eintrag", func(e *colly.HTMLElement) {
		if stop {
			return
		}

		timestamp, err := ParseTimestamp(e.ChildText("td.datum"))
		if err != nil {
			Logger.Log.Warn("rundmail: unparseable archive date: ", err)
			return
		}
		// The probe timestamp is the newest already-ingested issue, the
		// archive lists newest first.
		if r.HasLatest && !timestamp.After(r.Latest) {
			stop = true
			return
		}

		detailURL := e.Request.AbsoluteURL(e.ChildAttr("td.betreff a", "href"))
		issueEntries, err := r.collectIssue(ctx, detailURL, timestamp)
		if err != nil {
			Logger.Log.Error("rundmail: fail to collect issue ", detailURL, ": ", err)
			return
		}
		entries = append(entries, issueEntries...)
	})

	c.OnHTML("a.weiter", func(e *colly.HTMLElement) {
		if !stop {
			e.Request.Visit(e.Attr("href"))
		}
	})

	c.OnError(func(resp *colly.Response, err error) {
		Logger.Log.Error("rundmail: request to ", resp.Request.URL, " failed: ", err)
	})

	if err := c.Visit(r.ArchiveURL); err != nil {
		return nil, errors.Wrap(err, "fail to visit rundmail archive")
	}
	return entries, nil
}

// collectIssue fetches one archive detail page and emits its entries.
func (r *RundmailAdapter) collectIssue(ctx context.Context, issueURL string, timestamp time.Time) ([]model.RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issueURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch issue page")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("issue page responded %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse issue page")
	}

	subject := strings.TrimSpace(doc.Find("h1.betreff").Text())
	if strings.HasPrefix(subject, BulkSubjectMarker) {
		return ParseBulkIssue(doc, issueURL, timestamp), nil
	}
	return []model.RawEntry{ParseSingleIssue(doc, issueURL, timestamp, subject)}, nil
}

// ParseBulkIssue emits one entry per embedded message of a bulk issue. The
// issue groups messages into sections with a category heading; messages are
// addressed by in-page anchor.
func ParseBulkIssue(doc *goquery.Document, issueURL string, timestamp time.Time) []model.RawEntry {
	var entries []model.RawEntry

	rundmailID := rundmailIDFromURL(issueURL)
	sourceName := BulkSubjectMarker + " vom " + timestamp.In(model.Timezone()).Format("02.01.2006")

	doc.Find("div.sammel-abschnitt").Each(func(_ int, section *goquery.Selection) {
		heading := strings.TrimSpace(section.Find("h2").First().Text())
		sourceType := model.SourceTypeSammelRundmail
		if strings.Contains(heading, jobHeadingMarker) {
			sourceType = model.SourceTypeJobRundmail
		}

		section.Find("div.nachricht").Each(func(_ int, message *goquery.Selection) {
			subject := strings.TrimSpace(message.Find("h3").First().Text())
			if subject == "" {
				return
			}
			title, audiences, locations := NormalizeSubject(subject)

			link := issueURL
			if anchor, ok := message.Attr("id"); ok && anchor != "" {
				link = issueURL + "#" + anchor
			}

			entries = append(entries, model.RawEntry{
				Link:                     link,
				Title:                    title,
				CreationTimestamp:        model.WireTime{Time: timestamp},
				Body:                     CollapseLineBreaks(message.Find("div.inhalt").Text()),
				Locations:                locations,
				SourceType:               sourceType,
				SourceName:               sourceName,
				RundmailId:               rundmailID,
				ManualAudienceCategories: audiences,
			})
		})
	})

	return entries
}

// ParseSingleIssue emits the one entry of a non-bulk issue.
func ParseSingleIssue(doc *goquery.Document, issueURL string, timestamp time.Time, subject string) model.RawEntry {
	title, audiences, locations := NormalizeSubject(subject)
	return model.RawEntry{
		Link:                     issueURL,
		Title:                    title,
		CreationTimestamp:        model.WireTime{Time: timestamp},
		Body:                     CollapseLineBreaks(doc.Find("div.inhalt").First().Text()),
		Locations:                locations,
		SourceType:               model.SourceTypeRundmail,
		SourceName:               "Rundmail vom " + timestamp.In(model.Timezone()).Format("02.01.2006"),
		RundmailId:               rundmailIDFromURL(issueURL),
		ManualAudienceCategories: audiences,
	}
}

func rundmailIDFromURL(issueURL string) string {
	parsed, err := url.Parse(issueURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("id")
}
