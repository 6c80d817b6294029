package treasury

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talgya/capitol/internal/economy"
)

// Band classifies a debt-to-GDP ratio.
type Band string

const (
	BandSustainable Band = "sustainable" // Below 60%
	BandElevated    Band = "elevated"    // 60% up to 90%
	BandCritical    Band = "critical"    // 90% and above
)

// Debt-to-GDP thresholds, in percent.
const (
	ElevatedDebtRatio = 60.0
	CriticalDebtRatio = 90.0
)

// ClassifyDebt returns the band for a debt-to-GDP percentage.
func ClassifyDebt(ratio float64) Band {
	switch {
	case ratio >= CriticalDebtRatio:
		return BandCritical
	case ratio >= ElevatedDebtRatio:
		return BandElevated
	default:
		return BandSustainable
	}
}

// Summary is the read-only view of a ledger for display and scoring.
type Summary struct {
	Jurisdiction economy.Jurisdiction `json:"jurisdiction"`
	FiscalYear   int                  `json:"fiscal_year"`
	Balance      decimal.Decimal      `json:"balance"`
	IsInDebt     bool                 `json:"is_in_debt"`
	// DebtToGDP is nil when GDP is not positive.
	DebtToGDP     *float64        `json:"debt_to_gdp,omitempty"`
	Band          Band            `json:"band,omitempty"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	TotalSurplus  decimal.Decimal `json:"total_surplus"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Recent        []Entry         `json:"recent"`
}

// Summary derives totals and ratios from the full history. Deficits and
// surpluses are summed separately over budget entries and never netted;
// interest charges are reported on their own.
func (l *Ledger) Summary(gdp float64, recent int) Summary {
	s := Summary{
		Jurisdiction:  l.jurisdiction,
		FiscalYear:    l.fiscalYear,
		Balance:       l.Balance(),
		IsInDebt:      l.IsInDebt(),
		TotalDebt:     decimal.Zero,
		TotalSurplus:  decimal.Zero,
		TotalInterest: decimal.Zero,
		Recent:        l.Recent(recent),
	}
	for _, e := range l.entries {
		switch e.Kind {
		case KindBudget:
			if e.CashChange.IsNegative() {
				s.TotalDebt = s.TotalDebt.Add(e.CashChange.Abs())
			} else {
				s.TotalSurplus = s.TotalSurplus.Add(e.CashChange)
			}
		case KindInterest:
			s.TotalInterest = s.TotalInterest.Add(e.CashChange.Abs())
		}
	}

	if gdp > 0 {
		debt := 0.0
		if s.IsInDebt {
			debt = s.Balance.Abs().InexactFloat64()
		}
		ratio := debt / gdp * 100
		s.DebtToGDP = &ratio
		s.Band = ClassifyDebt(ratio)
	}
	return s
}

// Book holds one ledger per jurisdiction.
type Book struct {
	ledgers []*Ledger
}

// NewBook opens a ledger for every jurisdiction. Missing openings start at zero.
func NewBook(openings map[economy.Jurisdiction]decimal.Decimal, date time.Time, fiscalYear int) *Book {
	b := &Book{}
	for _, j := range economy.Jurisdictions {
		opening, ok := openings[j]
		if !ok {
			opening = decimal.Zero
		}
		b.ledgers = append(b.ledgers, New(j, opening, date, fiscalYear))
	}
	return b
}

// RestoreBook rebuilds every ledger from snapshots.
func RestoreBook(states []LedgerState) (*Book, error) {
	b := &Book{}
	for _, st := range states {
		l, err := Restore(st)
		if err != nil {
			return nil, err
		}
		b.ledgers = append(b.ledgers, l)
	}
	return b, nil
}

// Ledger returns the ledger for j, or nil.
func (b *Book) Ledger(j economy.Jurisdiction) *Ledger {
	for _, l := range b.ledgers {
		if l.jurisdiction == j {
			return l
		}
	}
	return nil
}

// Ledgers returns every ledger in jurisdiction order.
func (b *Book) Ledgers() []*Ledger {
	return b.ledgers
}

// States captures every ledger for a snapshot.
func (b *Book) States() []LedgerState {
	out := make([]LedgerState, 0, len(b.ledgers))
	for _, l := range b.ledgers {
		out = append(out, l.State())
	}
	return out
}
