package model

import "time"

// The two campus locations. Collectors map the "#KL" / "#LD" subject
// suffixes onto these names.
const (
	LocationKaiserslautern = "Kaiserslautern"
	LocationLandau         = "Landau"
)

/*

Location is a campus site a news item applies to.

Name: unique display name
Slug: url-safe identifier used by the retrieval facets, e.g. "kl"
*/
type Location struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Name string `gorm:"uniqueIndex;not null"`
	Slug string `gorm:"index"`
}
