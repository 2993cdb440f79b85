// Persistence helpers shared by the live ingest path and the backfill
// orchestrator. They depend only on the data model so that both entry
// points can import them without cycles.
package pipeline

import (
	"github.com/campushub/campusnews/enrich"
	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// LanguageByCode loads a bootstrap language.
func LanguageByCode(db *gorm.DB, code string) (*model.Language, error) {
	var lang model.Language
	if err := db.Where("code = ?", code).First(&lang).Error; err != nil {
		return nil, errors.Wrapf(err, "language %q not bootstrapped", code)
	}
	return &lang, nil
}

// TextForLanguage returns the news' text in the given language. A missing
// rendition surfaces as gorm.ErrRecordNotFound.
func TextForLanguage(db *gorm.DB, newsID string, languageCode string) (*model.Text, error) {
	lang, err := LanguageByCode(db, languageCode)
	if err != nil {
		return nil, err
	}
	var text model.Text
	if err := db.Where("news_id = ? AND language_id = ?", newsID, lang.Id).First(&text).Error; err != nil {
		return nil, err
	}
	return &text, nil
}

// UpsertText creates the (news, language) text or overwrites title and body
// of the existing row. The composite unique index keeps concurrent creators
// down to a single row.
func UpsertText(db *gorm.DB, newsID string, languageID string, title string, body string) error {
	var text model.Text
	res := db.Where(model.Text{NewsID: newsID, LanguageID: languageID}).
		Attrs(model.Text{Id: uuid.New().String(), Title: title, Body: body}).
		FirstOrCreate(&text)
	if res.Error != nil {
		return errors.Wrap(res.Error, "fail to upsert text")
	}
	if text.Title != title || text.Body != body {
		return db.Model(&text).Updates(map[string]interface{}{"title": title, "body": body}).Error
	}
	return nil
}

// ApplyCleanup persists a parsed bilingual cleanup result: the German text
// is written (overwriting a raw fallback from an earlier failed run), the
// English pivot is created, and the news is marked cleaned.
func ApplyCleanup(db *gorm.DB, news *model.News, parts *enrich.BilingualText) error {
	german, err := LanguageByCode(db, model.LanguageGerman)
	if err != nil {
		return err
	}
	english, err := LanguageByCode(db, model.LanguageEnglish)
	if err != nil {
		return err
	}

	if err := UpsertText(db, news.Id, german.Id, parts.GermanTitle, parts.GermanBody); err != nil {
		return err
	}
	if err := UpsertText(db, news.Id, english.Id, parts.EnglishTitle, parts.EnglishBody); err != nil {
		return err
	}
	return db.Model(news).Update("cleaned", true).Error
}

// EnsureRawGermanText persists the uncleaned German fallback text so the
// item is at least readable until backfill retries the cleanup.
func EnsureRawGermanText(db *gorm.DB, news *model.News, title string, body string) error {
	german, err := LanguageByCode(db, model.LanguageGerman)
	if err != nil {
		return err
	}
	var text model.Text
	res := db.Where(model.Text{NewsID: news.Id, LanguageID: german.Id}).
		Attrs(model.Text{Id: uuid.New().String(), Title: title, Body: body}).
		FirstOrCreate(&text)
	return res.Error
}

// AttachLocations links the named locations to the news, creating missing
// Location rows on the fly.
func AttachLocations(db *gorm.DB, news *model.News, names []string) error {
	for _, name := range names {
		var location model.Location
		res := db.Where(model.Location{Name: name}).
			Attrs(model.Location{Id: uuid.New().String(), Slug: utils.Slugify(name)}).
			FirstOrCreate(&location)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "fail to upsert location %q", name)
		}
		if err := db.Model(news).Association("Locations").Append(&location); err != nil {
			return errors.Wrapf(err, "fail to link location %q", name)
		}
	}
	return nil
}

// AttachCategories links content and audience categories to the news,
// creating missing category rows on the fly.
func AttachCategories(db *gorm.DB, news *model.News, content []string, audience []string) error {
	for _, name := range content {
		var category model.ContentCategory
		res := db.Where(model.ContentCategory{Name: name}).
			Attrs(model.ContentCategory{Id: uuid.New().String(), Slug: utils.Slugify(name)}).
			FirstOrCreate(&category)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "fail to upsert content category %q", name)
		}
		if err := db.Model(news).Association("ContentCategories").Append(&category); err != nil {
			return errors.Wrapf(err, "fail to link content category %q", name)
		}
	}
	for _, name := range audience {
		var category model.AudienceCategory
		res := db.Where(model.AudienceCategory{Name: name}).
			Attrs(model.AudienceCategory{Id: uuid.New().String(), Slug: utils.Slugify(name)}).
			FirstOrCreate(&category)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "fail to upsert audience category %q", name)
		}
		if err := db.Model(news).Association("AudienceCategories").Append(&category); err != nil {
			return errors.Wrapf(err, "fail to link audience category %q", name)
		}
	}
	return nil
}

// AdditionalLanguages returns all bootstrap languages except German and
// English, the ones the translator has to fill.
func AdditionalLanguages(db *gorm.DB) ([]model.Language, error) {
	var languages []model.Language
	err := db.Where("code NOT IN ?", []string{model.LanguageGerman, model.LanguageEnglish}).
		Find(&languages).Error
	return languages, err
}
