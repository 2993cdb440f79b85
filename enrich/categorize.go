package enrich

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/campushub/campusnews/ledger"
	"github.com/campushub/campusnews/utils"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	defaultCategorizeModel = "gpt-4o-mini"
	categorizeTemperature  = 0.2
)

// Categorizer assigns a subset of the allowed content and audience
// categories to a news item based on its raw German text.
type Categorizer struct {
	db       *gorm.DB
	client   Client
	model    string
	dailyCap int64
}

func NewCategorizer(db *gorm.DB, client Client, dailyCap int64) *Categorizer {
	model := os.Getenv("OPENAI_CATEGORIZE_MODEL")
	if model == "" {
		model = defaultCategorizeModel
	}
	return &Categorizer{db: db, client: client, model: model, dailyCap: dailyCap}
}

// Classify returns the content and audience categories for the given text.
// Every returned name is validated against its allow-list, an unknown name
// fails the whole classification.
func (c *Categorizer) Classify(ctx context.Context, title string, body string) (content []string, audience []string, err error) {
	contentAllowed, err := LoadAllowList(filepath.Join(configDir(), "inhaltskategorien.txt"))
	if err != nil {
		return nil, nil, err
	}
	audienceAllowed, err := LoadAllowList(filepath.Join(configDir(), "publikumskategorien.txt"))
	if err != nil {
		return nil, nil, err
	}

	reservation, err := ledger.Reserve(c.db, ledger.DefaultEstimate, c.dailyCap)
	if errors.Is(err, ledger.ErrBudgetExhausted) {
		return nil, nil, ErrTokenLimitExceeded
	}
	if err != nil {
		return nil, nil, err
	}

	prompt, err := LoadPrompt(filepath.Join(promptDir(), "kategorisierung.txt"))
	if err != nil {
		if rerr := ledger.Release(c.db, reservation, reservation.Amount); rerr != nil {
			Logger.Log.Error("fail to release categorization reservation: ", rerr)
		}
		return nil, nil, err
	}
	prompt = strings.ReplaceAll(prompt, "%Inhaltskategorien%", strings.Join(contentAllowed, ", "))
	prompt = strings.ReplaceAll(prompt, "%Publikumskategorien%", strings.Join(audienceAllowed, ", "))

	result, err := c.client.Complete(ctx, CompletionRequest{
		Model:        c.model,
		SystemPrompt: prompt,
		UserPrompt:   fmt.Sprintf("Titel: %s\n\nText: %s", title, body),
		Temperature:  categorizeTemperature,
	})
	if err != nil {
		if rerr := ledger.Release(c.db, reservation, reservation.Amount); rerr != nil {
			Logger.Log.Error("fail to release categorization reservation: ", rerr)
		}
		return nil, nil, errors.Wrap(err, "categorization llm call failed")
	}

	if err := ledger.Reconcile(c.db, reservation, result.TokensUsed); err != nil {
		Logger.Log.Error("fail to reconcile categorization reservation: ", err)
	}

	content, audience, err = ParseCategorization(result.Text)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range content {
		if !utils.ContainsString(contentAllowed, name) {
			return nil, nil, errors.Wrapf(ErrUnknownCategory, "content category %q", name)
		}
	}
	for _, name := range audience {
		if !utils.ContainsString(audienceAllowed, name) {
			return nil, nil, errors.Wrapf(ErrUnknownCategory, "audience category %q", name)
		}
	}

	return content, audience, nil
}
