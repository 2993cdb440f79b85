package enrich

import (
	"regexp"
	"strings"
)

// The marker-based response formats are brittle but intentional: on parse
// failure the stage fails closed and the record stays incomplete, partial
// data is never persisted. Markers must stay verbatim.
var (
	cleanupPattern = regexp.MustCompile(
		`(?s)\[LANGUAGE:de\]\s*\[Titel\]\s*(.*?)\s*\[Text\]\s*(.*?)\s*\[LANGUAGE:en\]\s*\[Titel\]\s*(.*?)\s*\[Text\]\s*(.*)\s*$`)
	categorizationPattern = regexp.MustCompile(
		`(?s)\[Inhaltskategorien\]\s*(.*?)\s*\[Publikumskategorien\]\s*(.*)\s*$`)
	translationPattern = regexp.MustCompile(
		`(?s)\[Titel\]\s*(.*?)\s*\[Text\]\s*(.*)\s*$`)
)

// BilingualText is the parsed result of a cleanup response.
type BilingualText struct {
	GermanTitle  string
	GermanBody   string
	EnglishTitle string
	EnglishBody  string
}

// ParseCleanup extracts the four parts of a bilingual cleanup response.
func ParseCleanup(response string) (*BilingualText, error) {
	m := cleanupPattern.FindStringSubmatch(response)
	if m == nil {
		return nil, ErrCleanupParse
	}
	return &BilingualText{
		GermanTitle:  m[1],
		GermanBody:   m[2],
		EnglishTitle: m[3],
		EnglishBody:  m[4],
	}, nil
}

// ParseCategorization extracts the two comma-separated category lists.
func ParseCategorization(response string) (content []string, audience []string, err error) {
	m := categorizationPattern.FindStringSubmatch(response)
	if m == nil {
		return nil, nil, ErrCategorizationParse
	}
	return splitCSV(m[1]), splitCSV(m[2]), nil
}

// ParseTranslation extracts translated title and body.
func ParseTranslation(response string) (title string, body string, err error) {
	m := translationPattern.FindStringSubmatch(response)
	if m == nil {
		return "", "", ErrTranslationParse
	}
	return m[1], m[2], nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
