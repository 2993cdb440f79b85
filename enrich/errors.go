package enrich

import "github.com/pkg/errors"

// Error taxonomy of the enrichment stages. Token-limit refusals are
// first-class outcomes: they leave the record eligible for backfill and are
// never retried within the same call.
var (
	ErrTokenLimitExceeded  = errors.New("token limit exceeded")
	ErrCleanupFailed       = errors.New("cleanup failed")
	ErrCleanupParse        = errors.New("cleanup response not parseable")
	ErrCategorizationParse = errors.New("categorization response not parseable")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrTranslationFailed   = errors.New("translation failed")
	ErrTranslationParse    = errors.New("translation response not parseable")
)
