package scraper

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/campushub/campusnews/model"
)

func envOr(name string, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

var (
	bracketPrefix  = regexp.MustCompile(`^\s*\[([^\]]*)\]\s*`)
	locationSuffix = regexp.MustCompile(`\s*#(KL|LD)\s*$`)
	lineBreakRuns  = regexp.MustCompile(`\n{3,}`)
)

// audiencePrefixes maps the bracketed subject prefixes the Rundmail service
// uses onto audience category names.
var audiencePrefixes = map[string]string{
	"stud": "Studierende",
	"bed":  "Beschäftigte",
}

// NormalizeSubject strips bracketed audience prefixes and #KL/#LD location
// suffixes from a subject line. The stripped markers are returned as
// audience category names and location names instead.
func NormalizeSubject(subject string) (title string, audiences []string, locations []string) {
	title = strings.TrimSpace(subject)

	for {
		m := bracketPrefix.FindStringSubmatch(title)
		if m == nil {
			break
		}
		if audience, ok := audiencePrefixes[strings.ToLower(strings.TrimSpace(m[1]))]; ok {
			audiences = append(audiences, audience)
		}
		title = title[len(m[0]):]
	}

	for {
		m := locationSuffix.FindStringSubmatch(title)
		if m == nil {
			break
		}
		switch m[1] {
		case "KL":
			locations = append(locations, model.LocationKaiserslautern)
		case "LD":
			locations = append(locations, model.LocationLandau)
		}
		title = title[:len(title)-len(m[0])]
	}

	return strings.TrimSpace(title), audiences, locations
}

// CollapseLineBreaks removes carriage returns and folds runs of three or
// more line breaks into a paragraph break.
func CollapseLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(lineBreakRuns.ReplaceAllString(s, "\n\n"))
}

// ParseTimestamp parses the timestamp formats found across the scraped
// sources, falling back to lenient parsing for anything unexpected. The
// result is localized to the service timezone.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{
		model.WireTimeLayout,
		"02.01.2006 15:04",
		"02.01.2006",
	} {
		if parsed, err := time.ParseInLocation(layout, raw, model.Timezone()); err == nil {
			return parsed, nil
		}
	}
	return dateparse.ParseIn(raw, model.Timezone())
}
