package pipeline

import (
	"context"
	"encoding/json"

	"github.com/campushub/campusnews/enrich"
	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/utils"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

/*

Processor turns one RawEntry into the canonical news record plus its
enrichment products. The stages within a single entry are strictly ordered
(source -> news -> cleanup -> locations -> categories -> translations),
across entries nothing is ordered.

Enrichment failures never roll back the news creation: the record degrades
to an incomplete state (cleaned = false, missing texts, missing categories)
that the hourly backfill resolves.
*/
type Processor struct {
	DB          *gorm.DB
	Cleaner     *enrich.Cleaner
	Categorizer *enrich.Categorizer
	Translator  *enrich.Translator

	// Optional redis fast path in front of the title dedup query. May be
	// nil, the DB unique constraint is the actual guarantee.
	Dedup *utils.DedupCache
}

func NewProcessor(db *gorm.DB, client enrich.Client, dailyCap int64, dedup *utils.DedupCache) *Processor {
	return &Processor{
		DB:          db,
		Cleaner:     enrich.NewCleaner(db, client, dailyCap),
		Categorizer: enrich.NewCategorizer(db, client, dailyCap),
		Translator:  enrich.NewTranslator(db, client, dailyCap),
		Dedup:       dedup,
	}
}

// ProcessEntry runs the full per-entry pipeline. Returned errors abort only
// this entry, the gateway logs them and continues with the batch.
func (p *Processor) ProcessEntry(ctx context.Context, entry *model.RawEntry) error {
	if entry.Title == "" {
		return errors.New("entry has no title")
	}

	source, err := ResolveSource(p.DB, entry)
	if err != nil {
		return err
	}

	if p.Dedup.Seen(entry.Title) {
		Logger.Log.Info("skip known title (cache): ", entry.Title)
		return nil
	}

	news, created, err := p.upsertNews(entry, source)
	if err != nil {
		return err
	}
	p.Dedup.MarkSeen(entry.Title)
	if !created {
		Logger.Log.Info("skip known title: ", entry.Title)
		return nil
	}

	// Cleanup first: translation is defined over the English pivot it
	// produces. A failed or unparseable cleanup degrades to the raw German
	// fallback and the record stays cleaned = false for backfill.
	var parts *enrich.BilingualText
	response, err := p.Cleaner.Cleanup(ctx, entry.Title, entry.Body)
	if err != nil {
		Logger.Log.Warn("cleanup failed for ", news.Id, ": ", err)
	} else if parts, err = enrich.ParseCleanup(response); err != nil {
		Logger.Log.Warn("cleanup response unparseable for ", news.Id, ": ", err)
		parts = nil
	}

	if parts != nil {
		if err := ApplyCleanup(p.DB, news, parts); err != nil {
			return err
		}
	} else {
		if err := EnsureRawGermanText(p.DB, news, entry.Title, entry.Body); err != nil {
			return err
		}
	}

	if err := AttachLocations(p.DB, news, entry.Locations); err != nil {
		return err
	}

	p.categorize(ctx, news, entry)

	if parts != nil {
		p.translateAll(ctx, news, parts.EnglishTitle, parts.EnglishBody)
	}

	return nil
}

// upsertNews creates the canonical record keyed by title. Concurrent
// ingestion of the same title produces exactly one row, the DB unique
// constraint breaks the tie.
func (p *Processor) upsertNews(entry *model.RawEntry, source *model.Source) (*model.News, bool, error) {
	var existing model.News
	res := p.DB.Where("title = ?", entry.Title).First(&existing)
	if res.Error == nil {
		return &existing, false, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(res.Error, "fail to look up news by title")
	}

	rawPayload, err := json.Marshal(entry)
	if err != nil {
		return nil, false, errors.Wrap(err, "fail to marshal raw entry")
	}

	news := model.News{
		Id:                uuid.New().String(),
		Title:             entry.Title,
		Link:              entry.Link,
		CreationTimestamp: entry.CreationTimestamp.In(model.Timezone()),
		SourceID:          source.Id,
		SourceType:        entry.SourceType,
		Cleaned:           false,
		RawPayload:        rawPayload,
	}
	if err := p.DB.Create(&news).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent ingest of the same title.
			return &news, false, nil
		}
		return nil, false, errors.Wrap(err, "fail to create news")
	}
	return &news, true, nil
}

// categorize links categories to a fresh news record. Trusted submissions
// carry manual category names and bypass the LLM entirely; adapter-derived
// audience tags (e.g. from bulletin subject prefixes) are attached in
// addition to whatever the classifier returns.
func (p *Processor) categorize(ctx context.Context, news *model.News, entry *model.RawEntry) {
	if len(entry.ManualContentCategories) > 0 || len(entry.ManualAudienceCategories) > 0 {
		if err := AttachCategories(p.DB, news, entry.ManualContentCategories, entry.ManualAudienceCategories); err != nil {
			Logger.Log.Error("fail to attach manual categories for ", news.Id, ": ", err)
		}
		if entry.TrustedUserId != "" {
			return
		}
	}

	content, audience, err := p.Categorizer.Classify(ctx, entry.Title, entry.Body)
	if err != nil {
		Logger.Log.Warn("categorization failed for ", news.Id, ": ", err)
		return
	}
	if err := AttachCategories(p.DB, news, content, audience); err != nil {
		Logger.Log.Error("fail to attach categories for ", news.Id, ": ", err)
	}
}

// translateAll creates one Text per additional supported language from the
// English pivot. Each failure is logged and left to backfill.
func (p *Processor) translateAll(ctx context.Context, news *model.News, englishTitle string, englishBody string) {
	languages, err := AdditionalLanguages(p.DB)
	if err != nil {
		Logger.Log.Error("fail to list additional languages: ", err)
		return
	}
	for _, language := range languages {
		title, body, err := p.Translator.Translate(ctx, englishTitle, englishBody, language)
		if err != nil {
			Logger.Log.Warn("translation to ", language.Code, " failed for ", news.Id, ": ", err)
			continue
		}
		if err := UpsertText(p.DB, news.Id, language.Id, title, body); err != nil {
			Logger.Log.Error("fail to persist ", language.Code, " text for ", news.Id, ": ", err)
		}
	}
}
