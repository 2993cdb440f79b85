package model

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// WireTimeLayout is the timestamp format used on the ingest wire, always
// rendered in the configured timezone.
const WireTimeLayout = "02.01.2006 15:04:05"

var (
	tzOnce sync.Once
	tz     *time.Location
)

// Timezone returns the service timezone (env TIMEZONE, default
// Europe/Berlin). All wire timestamps are interpreted in this location.
func Timezone() *time.Location {
	tzOnce.Do(func() {
		name := os.Getenv("TIMEZONE")
		if name == "" {
			name = "Europe/Berlin"
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			loc = time.UTC
		}
		tz = loc
	})
	return tz
}

// WireTime is a time.Time that marshals as "DD.MM.YYYY HH:MM:SS" in the
// configured timezone, matching what the collectors send.
type WireTime struct {
	time.Time
}

func (t WireTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.In(Timezone()).Format(WireTimeLayout))), nil
}

func (t *WireTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := time.ParseInLocation(WireTimeLayout, s, Timezone())
	if err != nil {
		return fmt.Errorf("invalid wire timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

/*

RawEntry is the transient, uniform shape every collector normalizes its
items into. It only ever lives on the wire and in memory, the per-entry
processing turns it into News / Source / Text rows.

The json keys are the German field names the collectors have always used.
*/
type RawEntry struct {
	Link              string   `json:"link"`
	Title             string   `json:"titel"`
	CreationTimestamp WireTime `json:"erstellungsdatum"`
	Body              string   `json:"text"`
	Locations         []string `json:"standorte,omitempty"`

	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`

	// Only set for bulletin variants.
	RundmailId string `json:"rundmail_id,omitempty"`

	// Only set for trusted account submissions. Manual categories bypass
	// the LLM categorizer.
	TrustedUserId            string   `json:"trusted_user_id,omitempty"`
	ManualContentCategories  []string `json:"inhaltskategorien,omitempty"`
	ManualAudienceCategories []string `json:"publikumskategorien,omitempty"`
}
