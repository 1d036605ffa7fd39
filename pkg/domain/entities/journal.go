package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalLine represents a single debit or credit against an account
type JournalLine struct {
	Account string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// NewJournalLine creates a validated JournalLine
func NewJournalLine(account string, debit, credit decimal.Decimal) (*JournalLine, error) {
	if account == "" {
		return nil, fmt.Errorf("account cannot be empty")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return nil, fmt.Errorf("debit and credit cannot be negative, got %s / %s", debit, credit)
	}

	return &JournalLine{Account: account, Debit: debit, Credit: credit}, nil
}

// JournalEntry represents a posted double-entry journal record
type JournalEntry struct {
	ID        string
	Date      time.Time
	Reference string
	Memo      string
	Lines     []JournalLine
}
