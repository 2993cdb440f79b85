package model

import (
	"time"

	"gorm.io/datatypes"
)

/*

News is the canonical record a scraped item becomes once it passed the
ingest gateway.

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when entity is last updated

Title: plain text title, unique across all news. The title is the dedup key,
	concurrent ingests of the same title must produce exactly one row.
Link: original url of the item, may be empty (e.g. mailing list items)
CreationTimestamp: when the source published the item, localized to the
	configured timezone. Retrieval orders by this field descending.
SourceID:
Source: the typed source record this item came from, "belongs-to" relation
SourceType: the original wire tag (e.g. "Sammel-Rundmail"). Kept on the news
	itself so bulletin filtering does not need a join on sources.

Cleaned: false as long as only the raw German text exists. Set to true once
	the LLM cleanup produced both a cleaned German and a cleaned English text.

RawPayload: the raw entry as received on the wire, kept for audit and for
	backfill to re-run enrichment from the original input.

Texts: one row per language, see Text
Locations / ContentCategories / AudienceCategories: "many-to-many" relations
*/
type News struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title             string `gorm:"uniqueIndex;not null"`
	Link              string
	CreationTimestamp time.Time `gorm:"index"`

	SourceID   string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Source     Source `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	SourceType string `gorm:"index"`

	Cleaned bool `gorm:"default:false"`

	RawPayload datatypes.JSON

	Texts              []Text              `gorm:"constraint:OnDelete:CASCADE;"`
	Locations          []*Location         `gorm:"many2many:news_locations;"`
	ContentCategories  []*ContentCategory  `gorm:"many2many:news_content_categories;"`
	AudienceCategories []*AudienceCategory `gorm:"many2many:news_audience_categories;"`
}
