package model

import "time"

// DayLayout is the format of TokenLedger.Day.
const DayLayout = "2006-01-02"

/*

TokenLedger tracks the LLM token spend of one calendar day.

Exactly one row exists per day (unique index on Day), created lazily with
UsedTokens = 0 on the day's first reservation. All mutations go through
atomic conditional updates, see the ledger package. UsedTokens never exceeds
the configured cap by more than one in-flight reservation and never drops
below zero.
*/
type TokenLedger struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Day        string `gorm:"uniqueIndex;not null"`
	UsedTokens int64  `gorm:"not null;default:0"`
}
