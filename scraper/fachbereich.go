package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/gocolly/colly"
	"github.com/pkg/errors"
)

const defaultFachbereichURL = "https://www.campushub.de/fachbereiche"

// facultySection is one of the two listing sections a faculty page
// exposes. Articles in the science section are preset for a research
// audience, the general section carries no preset.
type facultySection struct {
	Path      string
	Audiences []string
}

var facultySections = []facultySection{
	{Path: "aktuelles"},
	{Path: "wissenschaft", Audiences: []string{"Forschende"}},
}

// FachbereichAdapter walks the news sections of a faculty page. Both
// sections paginate with a next link, the walk stops on the first page
// without one.
type FachbereichAdapter struct {
	BaseURL string

	// Faculty display name, becomes the source name of every entry.
	Faculty string
}

func NewFachbereichAdapter(faculty string) *FachbereichAdapter {
	return &FachbereichAdapter{
		BaseURL: envOr("FACHBEREICH_BASE_URL", defaultFachbereichURL),
		Faculty: faculty,
	}
}

func (f *FachbereichAdapter) Name() string {
	return "fachbereich/" + f.Faculty
}

func (f *FachbereichAdapter) Collect(ctx context.Context) ([]model.RawEntry, error) {
	var entries []model.RawEntry
	for _, section := range facultySections {
		sectionEntries, err := f.collectSection(section)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to collect section %s", section.Path)
		}
		entries = append(entries, sectionEntries...)
	}
	return entries, nil
}

// collectSection uses one collector per section so the preset audience
// tags stay scoped to the pages they belong to.
func (f *FachbereichAdapter) collectSection(section facultySection) ([]model.RawEntry, error) {
	var entries []model.RawEntry

	c := colly.NewCollector()

	c.OnHTML("article.meldung", func(e *colly.HTMLElement) {
		timestamp, err := ParseTimestamp(e.ChildText("span.datum"))
		if err != nil {
			Logger.Log.Error("fachbereich: fail to parse date on ", e.Request.URL, ": ", err)
			return
		}

		entries = append(entries, model.RawEntry{
			Link:                     e.Request.AbsoluteURL(e.ChildAttr("a.detail", "href")),
			Title:                    strings.TrimSpace(e.ChildText("h2")),
			CreationTimestamp:        model.WireTime{Time: timestamp},
			Body:                     CollapseLineBreaks(e.ChildText("div.teaser")),
			SourceType:               model.SourceTypeFachbereich,
			SourceName:               f.Faculty,
			ManualAudienceCategories: section.Audiences,
		})
	})

	c.OnHTML("a.naechste-seite", func(e *colly.HTMLElement) {
		if err := e.Request.Visit(e.Attr("href")); err != nil &&
			!errors.Is(err, colly.ErrAlreadyVisited) {
			Logger.Log.Error("fachbereich: fail to paginate: ", err)
		}
	})

	start := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(f.BaseURL, "/"), f.Faculty, section.Path)
	if err := c.Visit(start); err != nil {
		return nil, err
	}
	c.Wait()

	return entries, nil
}
