package enrich

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campushub/campusnews/ledger"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	defaultCleanupModel = "gpt-4o-mini"

	// Deterministic-leaning, the cleanup must not invent content.
	cleanupTemperature = 0.2
)

// promptDir resolves the directory holding the system prompt files.
func promptDir() string {
	if dir := os.Getenv("PROMPT_DIR"); dir != "" {
		return dir
	}
	return "prompts"
}

// configDir resolves the directory holding allow-lists and language config.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

// Cleaner produces a bilingual (de/en) cleaned title + body from raw source
// text.
type Cleaner struct {
	db       *gorm.DB
	client   Client
	model    string
	dailyCap int64
}

func NewCleaner(db *gorm.DB, client Client, dailyCap int64) *Cleaner {
	model := os.Getenv("OPENAI_CLEANUP_MODEL")
	if model == "" {
		model = defaultCleanupModel
	}
	return &Cleaner{db: db, client: client, model: model, dailyCap: dailyCap}
}

// Cleanup runs the bilingual rewrite and returns the raw response text.
// Splitting the response into its four parts is the caller's concern, a
// parse failure there must not waste the already-spent tokens.
func (c *Cleaner) Cleanup(ctx context.Context, title string, body string) (string, error) {
	reservation, err := ledger.Reserve(c.db, ledger.DefaultEstimate, c.dailyCap)
	if errors.Is(err, ledger.ErrBudgetExhausted) {
		return "", ErrTokenLimitExceeded
	}
	if err != nil {
		return "", err
	}

	prompt, err := LoadPrompt(filepath.Join(promptDir(), "bereinigung.txt"))
	if err != nil {
		if rerr := ledger.Release(c.db, reservation, reservation.Amount); rerr != nil {
			Logger.Log.Error("fail to release cleanup reservation: ", rerr)
		}
		return "", err
	}

	result, err := c.client.Complete(ctx, CompletionRequest{
		Model:        c.model,
		SystemPrompt: prompt,
		UserPrompt:   fmt.Sprintf("Titel: %s\n\nText: %s", title, body),
		Temperature:  cleanupTemperature,
	})
	if err != nil {
		if rerr := ledger.Release(c.db, reservation, reservation.Amount); rerr != nil {
			Logger.Log.Error("fail to release cleanup reservation: ", rerr)
		}
		return "", errors.Wrap(ErrCleanupFailed, err.Error())
	}

	if err := ledger.Reconcile(c.db, reservation, result.TokensUsed); err != nil {
		Logger.Log.Error("fail to reconcile cleanup reservation: ", err)
	}
	return result.Text, nil
}
