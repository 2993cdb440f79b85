package model

import "time"

// ISO codes of the two languages that must always exist. German is the raw
// input language, English is the translation pivot.
const (
	LanguageGerman  = "de"
	LanguageEnglish = "en"
)

/*

Language is a supported output language of the pipeline.

The set is configured at bootstrap (config/sprachen.txt plus the two
mandatory entries), the pipeline itself never creates languages.

Code: two-letter ISO code, unique
DisplayName: native name shown to users, e.g. "Français"
EnglishName: name used to parameterize the translation prompt, e.g. "French"
*/
type Language struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	Code        string `gorm:"uniqueIndex;not null"`
	DisplayName string
	EnglishName string
}
