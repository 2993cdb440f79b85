package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
)

// DekanatRSSAdapter pulls the dean's office news feeds. Feed URLs come
// from DEKANAT_FEED_URLS, comma separated.
type DekanatRSSAdapter struct {
	FeedURLs []string

	parser *gofeed.Parser
}

func NewDekanatRSSAdapter() *DekanatRSSAdapter {
	var urls []string
	for _, raw := range strings.Split(envOr("DEKANAT_FEED_URLS", ""), ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return &DekanatRSSAdapter{
		FeedURLs: urls,
		parser:   gofeed.NewParser(),
	}
}

func (d *DekanatRSSAdapter) Name() string {
	return "dekanat-rss"
}

func (d *DekanatRSSAdapter) Collect(ctx context.Context) ([]model.RawEntry, error) {
	if len(d.FeedURLs) == 0 {
		return nil, errors.New("DEKANAT_FEED_URLS is not configured")
	}

	var entries []model.RawEntry
	for _, feedURL := range d.FeedURLs {
		feed, err := d.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			Logger.Log.Error("dekanat-rss: fail to parse feed ", feedURL, ": ", err)
			continue
		}
		for _, item := range feed.Items {
			entries = append(entries, itemToEntry(feed, item))
		}
	}
	return entries, nil
}

func itemToEntry(feed *gofeed.Feed, item *gofeed.Item) model.RawEntry {
	timestamp := time.Now()
	if item.PublishedParsed != nil {
		timestamp = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		timestamp = *item.UpdatedParsed
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	return model.RawEntry{
		Link:              item.Link,
		Title:             strings.TrimSpace(item.Title),
		CreationTimestamp: model.WireTime{Time: timestamp},
		Body:              CollapseLineBreaks(body),
		SourceType:        model.SourceTypeExterneSeite,
		SourceName:        feed.Title,
	}
}
