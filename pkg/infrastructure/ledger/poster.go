package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printforge/erp/pkg/domain/entities"
)

// balanceTolerance absorbs rounding residue from per-line cost math
var balanceTolerance = decimal.NewFromFloat(0.005)

// UnbalancedEntryError reports a journal entry whose debits and credits do
// not match within tolerance. Nothing is posted.
type UnbalancedEntryError struct {
	Reference string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("journal entry %s is unbalanced: debits %s, credits %s",
		e.Reference, e.Debits, e.Credits)
}

// Poster posts double-entry journal records. An entry is accepted only when
// total debits equal total credits within tolerance; an unbalanced entry
// fails as a whole.
type Poster struct {
	mu      sync.Mutex
	entries []entities.JournalEntry
}

// NewPoster creates an empty journal poster
func NewPoster() *Poster {
	return &Poster{}
}

// Post validates and records a journal entry
func (p *Poster) Post(ctx context.Context, date time.Time, reference, memo string, lines []entities.JournalLine) (*entities.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("journal entry %s has no lines", reference)
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		if line.Account == "" {
			return nil, fmt.Errorf("journal entry %s has a line without an account", reference)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if debits.Sub(credits).Abs().GreaterThan(balanceTolerance) {
		return nil, &UnbalancedEntryError{Reference: reference, Debits: debits, Credits: credits}
	}

	entry := entities.JournalEntry{
		ID:        uuid.NewString(),
		Date:      date,
		Reference: reference,
		Memo:      memo,
		Lines:     append([]entities.JournalLine(nil), lines...),
	}

	p.mu.Lock()
	p.entries = append(p.entries, entry)
	p.mu.Unlock()

	return &entry, nil
}

// Entries returns a copy of every posted entry
func (p *Poster) Entries() []entities.JournalEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.JournalEntry, len(p.entries))
	copy(out, p.entries)
	return out
}
