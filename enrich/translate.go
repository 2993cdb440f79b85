package enrich

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/campushub/campusnews/ledger"
	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	defaultTranslateModel = "gpt-4o-mini"
	translateTemperature  = 0.2
)

// Translator translates a canonical English title + body into one of the
// additional supported languages.
type Translator struct {
	db       *gorm.DB
	client   Client
	model    string
	dailyCap int64
}

func NewTranslator(db *gorm.DB, client Client, dailyCap int64) *Translator {
	model := os.Getenv("OPENAI_TRANSLATE_MODEL")
	if model == "" {
		model = defaultTranslateModel
	}
	return &Translator{db: db, client: client, model: model, dailyCap: dailyCap}
}

// Translate renders title and body in the target language. The input must
// be the English pivot text.
func (t *Translator) Translate(ctx context.Context, title string, body string, target model.Language) (string, string, error) {
	reservation, err := ledger.Reserve(t.db, ledger.DefaultEstimate, t.dailyCap)
	if errors.Is(err, ledger.ErrBudgetExhausted) {
		return "", "", ErrTokenLimitExceeded
	}
	if err != nil {
		return "", "", err
	}

	prompt, err := LoadPrompt(filepath.Join(promptDir(), "uebersetzung.txt"))
	if err != nil {
		if rerr := ledger.Release(t.db, reservation, reservation.Amount); rerr != nil {
			Logger.Log.Error("fail to release translation reservation: ", rerr)
		}
		return "", "", err
	}
	prompt = strings.ReplaceAll(prompt, "%Sprache%", target.EnglishName)

	result, err := t.client.Complete(ctx, CompletionRequest{
		Model:        t.model,
		SystemPrompt: prompt,
		UserPrompt:   fmt.Sprintf("Titel: %s\n\nText: %s", title, body),
		Temperature:  translateTemperature,
	})
	if err != nil {
		if rerr := ledger.Release(t.db, reservation, reservation.Amount); rerr != nil {
			Logger.Log.Error("fail to release translation reservation: ", rerr)
		}
		return "", "", errors.Wrap(ErrTranslationFailed, err.Error())
	}

	if err := ledger.Reconcile(t.db, reservation, result.TokensUsed); err != nil {
		Logger.Log.Error("fail to reconcile translation reservation: ", err)
	}

	return ParseTranslation(result.Text)
}
