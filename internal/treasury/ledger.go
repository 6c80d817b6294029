// Package treasury keeps the running cash position of each government the
// character can serve. Every change is an immutable ledger entry; the balance is
// always the last entry's ending balance, negative when in debt.
package treasury

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talgya/capitol/internal/economy"
)

var (
	ErrInvalidEntry = errors.New("invalid ledger entry")
	ErrOutOfOrder   = errors.New("ledger entry out of order")
	ErrInvalidRate  = errors.New("invalid interest rate")

	// ErrChainBroken means an ending balance no longer equals the previous
	// balance plus the cash change. Fatal for the ledger.
	ErrChainBroken = errors.New("ledger chain broken")
)

// Kind tags what produced an entry.
type Kind uint8

const (
	KindOpening Kind = iota
	KindBudget
	KindInterest
)

var kindNames = [...]string{"opening", "budget", "interest"}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown ledger entry kind %q", b)
}

// Entry is one immutable ledger record.
type Entry struct {
	Seq           int             `json:"seq"`
	Date          time.Time       `json:"date"`
	FiscalYear    int             `json:"fiscal_year"`
	Description   string          `json:"description"`
	Kind          Kind            `json:"kind"`
	CashChange    decimal.Decimal `json:"cash_change"`
	EndingBalance decimal.Decimal `json:"ending_balance"`
}

// Ledger is the append-only history for one jurisdiction.
type Ledger struct {
	jurisdiction economy.Jurisdiction
	entries      []Entry
	fiscalYear   int
	date         time.Time
}

// New opens a ledger with its opening balance as the first entry.
func New(j economy.Jurisdiction, opening decimal.Decimal, date time.Time, fiscalYear int) *Ledger {
	return &Ledger{
		jurisdiction: j,
		fiscalYear:   fiscalYear,
		date:         date,
		entries: []Entry{{
			Seq:           0,
			Date:          date,
			FiscalYear:    fiscalYear,
			Description:   "Opening balance",
			Kind:          KindOpening,
			CashChange:    opening,
			EndingBalance: opening,
		}},
	}
}

// Jurisdiction returns the government this ledger belongs to.
func (l *Ledger) Jurisdiction() economy.Jurisdiction {
	return l.jurisdiction
}

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal {
	return l.entries[len(l.entries)-1].EndingBalance
}

// IsInDebt reports whether the balance is negative.
func (l *Ledger) IsInDebt() bool {
	return l.Balance().IsNegative()
}

// FiscalYear returns the fiscal year the ledger is currently in.
func (l *Ledger) FiscalYear() int {
	return l.fiscalYear
}

// Entries returns a copy of the full history.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n newest entries, newest first.
func (l *Ledger) Recent(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Advance moves the ledger's period clock forward without booking anything.
func (l *Ledger) Advance(date time.Time, fiscalYear int) error {
	if date.Before(l.date) {
		return fmt.Errorf("%w: %s is before %s", ErrOutOfOrder, date.Format(time.DateOnly), l.date.Format(time.DateOnly))
	}
	if fiscalYear < l.fiscalYear {
		return fmt.Errorf("%w: fiscal year %d is before %d", ErrOutOfOrder, fiscalYear, l.fiscalYear)
	}
	l.date = date
	l.fiscalYear = fiscalYear
	return nil
}

// ApplyBudget books a budget item. Either the entry is appended in full or the
// ledger is left untouched.
func (l *Ledger) ApplyBudget(delta decimal.Decimal, description string, fiscalYear int, date time.Time) (Entry, error) {
	if description == "" {
		return Entry{}, fmt.Errorf("%w: description required", ErrInvalidEntry)
	}
	if date.Before(l.date) {
		return Entry{}, fmt.Errorf("%w: %s is before %s", ErrOutOfOrder, date.Format(time.DateOnly), l.date.Format(time.DateOnly))
	}
	if fiscalYear < l.fiscalYear {
		return Entry{}, fmt.Errorf("%w: fiscal year %d is before %d", ErrOutOfOrder, fiscalYear, l.fiscalYear)
	}

	e := l.append(KindBudget, delta, description, fiscalYear, date)
	l.date = date
	l.fiscalYear = fiscalYear
	return e, nil
}

// AccrueInterest charges interest on outstanding debt for the current fiscal
// year: |balance| * rate * periodFraction. It does nothing when the ledger is
// not in debt or the fiscal year has already been charged; in both cases it
// returns a nil entry and no error.
func (l *Ledger) AccrueInterest(rate, periodFraction float64) (*Entry, error) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return nil, fmt.Errorf("%w: rate %v", ErrInvalidRate, rate)
	}
	if math.IsNaN(periodFraction) || periodFraction <= 0 || periodFraction > 1 {
		return nil, fmt.Errorf("%w: period fraction %v", ErrInvalidRate, periodFraction)
	}
	if !l.IsInDebt() || l.accrued(l.fiscalYear) {
		return nil, nil
	}

	interest := l.Balance().Abs().
		Mul(decimal.NewFromFloat(rate)).
		Mul(decimal.NewFromFloat(periodFraction)).
		Round(2)
	if interest.IsZero() {
		return nil, nil
	}

	desc := fmt.Sprintf("Interest on %s debt (FY%d)", l.jurisdiction, l.fiscalYear)
	e := l.append(KindInterest, interest.Neg(), desc, l.fiscalYear, l.date)
	return &e, nil
}

// accrued reports whether interest was already charged in fiscalYear.
// Derived from the entries so the ledger never keeps a second source of truth.
func (l *Ledger) accrued(fiscalYear int) bool {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.FiscalYear < fiscalYear {
			return false
		}
		if e.Kind == KindInterest && e.FiscalYear == fiscalYear {
			return true
		}
	}
	return false
}

func (l *Ledger) append(kind Kind, change decimal.Decimal, desc string, fiscalYear int, date time.Time) Entry {
	e := Entry{
		Seq:           len(l.entries),
		Date:          date,
		FiscalYear:    fiscalYear,
		Description:   desc,
		Kind:          kind,
		CashChange:    change,
		EndingBalance: l.Balance().Add(change),
	}
	l.entries = append(l.entries, e)
	return e
}

// Verify walks the chain and checks every ending balance.
func (l *Ledger) Verify() error {
	return verify(l.entries)
}

func verify(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no opening entry", ErrChainBroken)
	}
	first := entries[0]
	if first.Kind != KindOpening || !first.EndingBalance.Equal(first.CashChange) {
		return fmt.Errorf("%w: bad opening entry", ErrChainBroken)
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Seq != i {
			return fmt.Errorf("%w: entry %d has seq %d", ErrChainBroken, i, cur.Seq)
		}
		if !prev.EndingBalance.Add(cur.CashChange).Equal(cur.EndingBalance) {
			return fmt.Errorf("%w: entry %d ends at %s, want %s", ErrChainBroken, i,
				cur.EndingBalance, prev.EndingBalance.Add(cur.CashChange))
		}
		if cur.Date.Before(prev.Date) || cur.FiscalYear < prev.FiscalYear {
			return fmt.Errorf("%w: entry %d out of order", ErrChainBroken, i)
		}
	}
	return nil
}

// LedgerState is the serializable form of a Ledger.
type LedgerState struct {
	Jurisdiction economy.Jurisdiction `json:"jurisdiction"`
	FiscalYear   int                  `json:"fiscal_year"`
	Date         time.Time            `json:"date"`
	Entries      []Entry              `json:"entries"`
}

// State captures the ledger for a snapshot.
func (l *Ledger) State() LedgerState {
	return LedgerState{
		Jurisdiction: l.jurisdiction,
		FiscalYear:   l.fiscalYear,
		Date:         l.date,
		Entries:      l.Entries(),
	}
}

// Restore rebuilds a ledger from a snapshot, refusing a broken chain.
func Restore(st LedgerState) (*Ledger, error) {
	if err := verify(st.Entries); err != nil {
		return nil, fmt.Errorf("restore %s ledger: %w", st.Jurisdiction, err)
	}
	entries := make([]Entry, len(st.Entries))
	copy(entries, st.Entries)
	return &Ledger{
		jurisdiction: st.Jurisdiction,
		entries:      entries,
		fiscalYear:   st.FiscalYear,
		date:         st.Date,
	}, nil
}

// FiscalYearOf returns the fiscal year containing date when years start in
// startMonth. Years are named for the calendar year they end in, so with an
// October start, 2025-10-01 falls in FY2026.
func FiscalYearOf(date time.Time, startMonth time.Month) int {
	if startMonth <= time.January {
		return date.Year()
	}
	if date.Month() >= startMonth {
		return date.Year() + 1
	}
	return date.Year()
}

// FiscalYearBounds returns the first day of fiscal year fy and the first day
// of the year after it.
func FiscalYearBounds(fy int, startMonth time.Month, loc *time.Location) (time.Time, time.Time) {
	year := fy
	if startMonth > time.January {
		year--
	} else {
		startMonth = time.January
	}
	from := time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0)
}

// RemainingFraction is the share of date's fiscal year that runs from date to
// the year end, date included. It is 1 on the first day of a fiscal year.
func RemainingFraction(date time.Time, startMonth time.Month) float64 {
	from, to := FiscalYearBounds(FiscalYearOf(date, startMonth), startMonth, date.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	total := math.Round(to.Sub(from).Hours() / 24)
	left := math.Round(to.Sub(day).Hours() / 24)
	return left / total
}
