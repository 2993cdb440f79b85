// Package ledger enforces the daily ceiling on LLM token spend shared
// across concurrent workers. All state lives in a single token_ledgers row
// per calendar day and every mutation is an atomic conditional update, no
// in-process locking and no cached counters.
package ledger

import (
	"time"

	"github.com/campushub/campusnews/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DefaultEstimate is the conservative per-call reservation used by all
// enrichment stages before the real usage is known.
const DefaultEstimate = 1500

// DefaultDailyCap is the production ceiling used when TOKEN_DAILY_CAP is
// not configured.
const DefaultDailyCap int64 = 100_000

// ErrBudgetExhausted is returned by Reserve when the remaining daily budget
// does not fit the requested amount. Callers must not call the LLM in that
// case; the record stays eligible for backfill.
var ErrBudgetExhausted = errors.New("daily token budget exhausted")

// Reservation is an opaque handle identifying the day row a reservation was
// charged against, permitting later release/reconcile.
type Reservation struct {
	Day    string
	Amount int64
}

func today() string {
	return time.Now().In(model.Timezone()).Format(model.DayLayout)
}

// ensureRow lazily creates today's ledger row with used_tokens = 0. Safe
// under concurrency, the unique index on day makes FirstOrCreate atomic.
func ensureRow(db *gorm.DB, day string) error {
	res := db.Where(model.TokenLedger{Day: day}).
		Attrs(model.TokenLedger{Id: uuid.New().String()}).
		FirstOrCreate(&model.TokenLedger{})
	return res.Error
}

// Reserve atomically increments today's usage by expected iff the result
// stays within cap. Two concurrent reservers can never both succeed when
// the remaining budget fits only one: the increment is a single conditional
// UPDATE predicated on the current value.
func Reserve(db *gorm.DB, expected int64, cap int64) (*Reservation, error) {
	day := today()
	if err := ensureRow(db, day); err != nil {
		return nil, errors.Wrap(err, "fail to ensure ledger row")
	}

	res := db.Model(&model.TokenLedger{}).
		Where("day = ? AND used_tokens + ? <= ?", day, expected, cap).
		Update("used_tokens", gorm.Expr("used_tokens + ?", expected))
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "fail to reserve tokens")
	}
	if res.RowsAffected == 0 {
		return nil, ErrBudgetExhausted
	}
	return &Reservation{Day: day, Amount: expected}, nil
}

// Release atomically decrements the reservation's day row by amount,
// clamped at zero.
func Release(db *gorm.DB, r *Reservation, amount int64) error {
	if r == nil {
		return nil
	}
	return db.Model(&model.TokenLedger{}).
		Where("day = ?", r.Day).
		Update("used_tokens", gorm.Expr("GREATEST(used_tokens - ?, 0)", amount)).Error
}

// Reconcile adjusts the ledger after the LLM call returned: the full
// reservation is released and the actually reported usage is charged.
func Reconcile(db *gorm.DB, r *Reservation, actual int64) error {
	if r == nil {
		return nil
	}
	if err := Release(db, r, r.Amount); err != nil {
		return err
	}
	return db.Model(&model.TokenLedger{}).
		Where("day = ?", r.Day).
		Update("used_tokens", gorm.Expr("used_tokens + ?", actual)).Error
}

// UsedToday returns today's recorded usage. Only used by handlers and tests.
func UsedToday(db *gorm.DB) (int64, error) {
	var row model.TokenLedger
	res := db.Where("day = ?", today()).First(&row)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return row.UsedTokens, nil
}
