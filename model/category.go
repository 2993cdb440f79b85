package model

import "time"

/*

ContentCategory classifies what a news item is about (e.g. "Forschung",
"Veranstaltung"). The permissible names are a fixed allow-list loaded from
configuration, the categorizer rejects anything outside of it.

Name: unique display name
Slug: url-safe identifier used by the retrieval facets
*/
type ContentCategory struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Name string `gorm:"uniqueIndex;not null"`
	Slug string `gorm:"index"`
}

/*

AudienceCategory classifies who a news item addresses (e.g. "Studierende",
"Mitarbeitende"). Same allow-list discipline as ContentCategory.
*/
type AudienceCategory struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Name string `gorm:"uniqueIndex;not null"`
	Slug string `gorm:"index"`
}
