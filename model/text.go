package model

import "time"

/*

Text is the title and body of a news item in one language.

For each (News, Language) pair at most one Text exists, enforced by the
composite unique index. English is the translation pivot: translations to
languages other than German and English are derived from the English row.

Id: primary key
CreatedAt: time when entity is created
NewsID: owning news, "belongs-to" relation
LanguageID: language of this rendition
*/
type Text struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	NewsID     string   `gorm:"uniqueIndex:idx_text_news_language;not null"`
	LanguageID string   `gorm:"uniqueIndex:idx_text_news_language;not null"`
	Language   Language `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Title string
	Body  string
}
