package scraper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

const (
	defaultPressURL = "https://www.campushub.de/pressemitteilungen"

	// How long the adapter waits for the item count to grow after a click
	// before it considers the list exhausted.
	loadMoreWait = 10 * time.Second
	loadMorePoll = 500 * time.Millisecond
)

// PressemitteilungAdapter drives a headless browser against the
// press-release page, clicking the "load more" control until the item
// count stops growing, then parses each article page statically.
type PressemitteilungAdapter struct {
	ListURL string

	client *http.Client
}

func NewPressemitteilungAdapter() *PressemitteilungAdapter {
	return &PressemitteilungAdapter{
		ListURL: envOr("PRESSE_URL", defaultPressURL),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *PressemitteilungAdapter) Name() string {
	return "pressemitteilungen"
}

const countItemsJS = `document.querySelectorAll("article.pressemitteilung").length`

// clickLoadMoreJS clicks the control if it is still present; it reports
// whether a click happened so the loop can terminate without blocking on a
// vanished node.
const clickLoadMoreJS = `(() => {
	const button = document.querySelector("button.mehr-laden");
	if (!button) { return false; }
	button.click();
	return true;
})()`

func (p *PressemitteilungAdapter) Collect(ctx context.Context) ([]model.RawEntry, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var listHTML string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(p.ListURL),
		chromedp.WaitVisible("article.pressemitteilung"),
	); err != nil {
		return nil, errors.Wrap(err, "fail to open press release page")
	}

	for {
		var before int
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(countItemsJS, &before)); err != nil {
			return nil, errors.Wrap(err, "fail to count press items")
		}

		var clicked bool
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(clickLoadMoreJS, &clicked)); err != nil {
			return nil, errors.Wrap(err, "fail to click load-more")
		}
		if !clicked {
			break
		}

		if !p.waitForGrowth(browserCtx, before) {
			break
		}
	}

	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &listHTML)); err != nil {
		return nil, errors.Wrap(err, "fail to read rendered list")
	}

	return p.parseList(ctx, listHTML)
}

// waitForGrowth polls the item count until it exceeds before, giving up
// after the wait window.
func (p *PressemitteilungAdapter) waitForGrowth(browserCtx context.Context, before int) bool {
	deadline := time.Now().Add(loadMoreWait)
	for time.Now().Before(deadline) {
		time.Sleep(loadMorePoll)
		var now int
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(countItemsJS, &now)); err != nil {
			return false
		}
		if now > before {
			return true
		}
	}
	return false
}

func (p *PressemitteilungAdapter) parseList(ctx context.Context, listHTML string) ([]model.RawEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listHTML))
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse rendered list")
	}

	var entries []model.RawEntry
	doc.Find("article.pressemitteilung a.detail").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		entry, err := p.collectArticle(ctx, absoluteURL(p.ListURL, href))
		if err != nil {
			Logger.Log.Error("presse: fail to collect article ", href, ": ", err)
			return
		}
		entries = append(entries, *entry)
	})
	return entries, nil
}

// collectArticle fetches and parses one article page without the browser.
func (p *PressemitteilungAdapter) collectArticle(ctx context.Context, articleURL string) (*model.RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch article")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("article responded %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse article")
	}

	timestamp, err := ParseTimestamp(doc.Find("span.datum").First().Text())
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse article date")
	}

	return &model.RawEntry{
		Link:              articleURL,
		Title:             strings.TrimSpace(doc.Find("h1").First().Text()),
		CreationTimestamp: model.WireTime{Time: timestamp},
		Body:              CollapseLineBreaks(doc.Find("div.artikel-text").Text()),
		SourceType:        model.SourceTypeInterneSeite,
		SourceName:        "Pressestelle",
	}, nil
}

func absoluteURL(base string, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
