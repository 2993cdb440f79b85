package backfill

import (
	"context"

	"github.com/campushub/campusnews/enrich"
	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/pipeline"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// BackfillDailyCap is the effectively-unbounded token cap the backfill
// runs under. Ingest-time enrichment is the budgeted path, the hourly
// sweep only mops up what deferred.
const BackfillDailyCap int64 = 2_000_000

// batchSize bounds how many news items one job run touches.
const batchSize = 200

// Result summarizes one job run for reporting.
type Result struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`

	// Set when the run stopped early on an exhausted token budget. The
	// remaining items wait for the next hourly run.
	Exhausted bool `json:"exhausted"`
}

// Runner executes the three backfill jobs against the canonical store.
type Runner struct {
	DB *gorm.DB

	Cleaner     *enrich.Cleaner
	Categorizer *enrich.Categorizer
	Translator  *enrich.Translator
}

func NewRunner(db *gorm.DB, client enrich.Client) *Runner {
	return &Runner{
		DB:          db,
		Cleaner:     enrich.NewCleaner(db, client, BackfillDailyCap),
		Categorizer: enrich.NewCategorizer(db, client, BackfillDailyCap),
		Translator:  enrich.NewTranslator(db, client, BackfillDailyCap),
	}
}

// BackfillCleanup reruns the bilingual cleanup over news that still only
// carry their raw German text.
func (r *Runner) BackfillCleanup(ctx context.Context) Result {
	result := Result{Job: TopicCleanupJob}

	var pending []model.News
	if err := r.DB.Where("cleaned = ?", false).
		Order("creation_timestamp ASC").
		Limit(batchSize).
		Find(&pending).Error; err != nil {
		Logger.Log.Error("cleanup backfill: fail to list pending news: ", err)
		return result
	}

	for i := range pending {
		news := &pending[i]
		text, err := pipeline.TextForLanguage(r.DB, news.Id, model.LanguageGerman)
		if err != nil {
			Logger.Log.Error("cleanup backfill: news ", news.Id, " has no german text: ", err)
			result.Failed++
			continue
		}

		response, err := r.Cleaner.Cleanup(ctx, text.Title, text.Body)
		if errors.Is(err, enrich.ErrTokenLimitExceeded) {
			result.Exhausted = true
			return result
		}
		if err != nil {
			Logger.Log.Error("cleanup backfill: fail to clean news ", news.Id, ": ", err)
			result.Failed++
			continue
		}

		parts, err := enrich.ParseCleanup(response)
		if err != nil {
			Logger.Log.Error("cleanup backfill: fail to parse response for news ", news.Id, ": ", err)
			result.Failed++
			continue
		}

		if err := pipeline.ApplyCleanup(r.DB, news, parts); err != nil {
			Logger.Log.Error("cleanup backfill: fail to store cleanup for news ", news.Id, ": ", err)
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result
}

// BackfillTranslations fills in missing language renditions for cleaned
// news, translating from the English pivot text.
func (r *Runner) BackfillTranslations(ctx context.Context) Result {
	result := Result{Job: TopicTranslationJob}

	languages, err := pipeline.AdditionalLanguages(r.DB)
	if err != nil {
		Logger.Log.Error("translation backfill: fail to list languages: ", err)
		return result
	}
	if len(languages) == 0 {
		return result
	}

	var cleaned []model.News
	if err := r.DB.Where("cleaned = ?", true).
		Order("creation_timestamp ASC").
		Limit(batchSize).
		Find(&cleaned).Error; err != nil {
		Logger.Log.Error("translation backfill: fail to list cleaned news: ", err)
		return result
	}

	for i := range cleaned {
		news := &cleaned[i]
		pivot, err := pipeline.TextForLanguage(r.DB, news.Id, model.LanguageEnglish)
		if err != nil {
			continue
		}

		for _, language := range languages {
			if _, err := pipeline.TextForLanguage(r.DB, news.Id, language.Code); err == nil {
				continue
			}

			title, body, err := r.Translator.Translate(ctx, pivot.Title, pivot.Body, language)
			if errors.Is(err, enrich.ErrTokenLimitExceeded) {
				result.Exhausted = true
				return result
			}
			if err != nil {
				Logger.Log.Error("translation backfill: fail to translate news ",
					news.Id, " to ", language.Code, ": ", err)
				result.Failed++
				continue
			}

			if err := pipeline.UpsertText(r.DB, news.Id, language.Id, title, body); err != nil {
				Logger.Log.Error("translation backfill: fail to store translation for news ",
					news.Id, ": ", err)
				result.Failed++
				continue
			}
			result.Processed++
		}
	}
	return result
}

// BackfillCategorizations classifies news that have no content category
// yet. Manually categorized submissions never show up here since their
// categories are attached at ingest time.
func (r *Runner) BackfillCategorizations(ctx context.Context) Result {
	result := Result{Job: TopicCategorizationJob}

	var pending []model.News
	if err := r.DB.
		Where("id NOT IN (?)",
			r.DB.Table("news_content_categories").Select("news_id")).
		Order("creation_timestamp ASC").
		Limit(batchSize).
		Find(&pending).Error; err != nil {
		Logger.Log.Error("categorization backfill: fail to list pending news: ", err)
		return result
	}

	for i := range pending {
		news := &pending[i]
		text, err := pipeline.TextForLanguage(r.DB, news.Id, model.LanguageGerman)
		if err != nil {
			Logger.Log.Error("categorization backfill: news ", news.Id, " has no german text: ", err)
			result.Failed++
			continue
		}

		content, audience, err := r.Categorizer.Classify(ctx, text.Title, text.Body)
		if errors.Is(err, enrich.ErrTokenLimitExceeded) {
			result.Exhausted = true
			return result
		}
		if err != nil {
			Logger.Log.Error("categorization backfill: fail to classify news ", news.Id, ": ", err)
			result.Failed++
			continue
		}

		if err := pipeline.AttachCategories(r.DB, news, content, audience); err != nil {
			Logger.Log.Error("categorization backfill: fail to store categories for news ",
				news.Id, ": ", err)
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result
}
