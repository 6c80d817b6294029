// Package govstats scores the government the character runs. Scores are a pure
// function of the treasury summary, the economy, and the legislative record;
// the only thing kept between calls is the last result, for display.
package govstats

import (
	"math"
	"time"

	"github.com/talgya/capitol/internal/economy"
	"github.com/talgya/capitol/internal/legislature"
	"github.com/talgya/capitol/internal/treasury"
)

// Rating classifies a 0–100 score.
type Rating string

const (
	RatingExcellent Rating = "EXCELLENT"
	RatingGood      Rating = "GOOD"
	RatingFair      Rating = "FAIR"
	RatingPoor      Rating = "POOR"
	RatingCritical  Rating = "CRITICAL"
)

// Rate returns the rating for score.
func Rate(score float64) Rating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingFair
	case score >= 20:
		return RatingPoor
	default:
		return RatingCritical
	}
}

// Department names.
const (
	Finance     = "Finance"
	Economy     = "Economy"
	Labor       = "Labor"
	Legislative = "Legislative"
	Public      = "Public Affairs"
)

// Department is one scored area of government.
type Department struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Rating Rating  `json:"rating"`
}

// Stats is a full scorecard.
type Stats struct {
	Date         time.Time            `json:"date"`
	Jurisdiction economy.Jurisdiction `json:"jurisdiction"`
	Departments  []Department         `json:"departments"`
	Overall      float64              `json:"overall"`
	Rating       Rating               `json:"rating"`
}

// Department returns the named department's score.
func (s Stats) Department(name string) (Department, bool) {
	for _, d := range s.Departments {
		if d.Name == name {
			return d, true
		}
	}
	return Department{}, false
}

// Inputs is everything a scorecard is computed from.
type Inputs struct {
	Date                time.Time
	Treasury            treasury.Summary
	Economy             economy.Reading
	InflationTarget     float64
	NaturalUnemployment float64
	Legislature         legislature.Accumulation
	Approval            float64
}

// Sub-metric weights.
const (
	debtWeight    = 0.6
	balanceWeight = 0.4
	growthWeight  = 0.5
	priceWeight   = 0.5
	passWeight    = 0.7
	policyWeight  = 0.3
)

// Compute scores every department and averages them.
func Compute(in Inputs) Stats {
	depts := []Department{
		dept(Finance, debtWeight*debtScore(in.Treasury)+balanceWeight*balanceScore(in.Treasury)),
		dept(Economy, growthWeight*growthScore(in.Economy.GDPGrowth)+
			priceWeight*inflationScore(in.Economy.Inflation, in.InflationTarget)),
		dept(Labor, laborScore(in.Economy.Unemployment, in.NaturalUnemployment)),
		dept(Legislative, passWeight*passScore(in.Legislature)+policyWeight*policyScore(in.Legislature.EnactedPolicies)),
		dept(Public, bound(in.Approval)),
	}
	total := 0.0
	for _, d := range depts {
		total += d.Score
	}
	overall := total / float64(len(depts))
	return Stats{
		Date:         in.Date,
		Jurisdiction: in.Treasury.Jurisdiction,
		Departments:  depts,
		Overall:      overall,
		Rating:       Rate(overall),
	}
}

func dept(name string, score float64) Department {
	score = bound(score)
	return Department{Name: name, Score: score, Rating: Rate(score)}
}

// debtScore falls linearly from 100 at no debt to 0 at 150% of GDP. Without a
// GDP figure the ratio is unknown and the score is neutral.
func debtScore(s treasury.Summary) float64 {
	if s.DebtToGDP == nil {
		return 50
	}
	return bound(100 * (1 - *s.DebtToGDP/150))
}

// balanceScore is the share of budget activity that ran a surplus.
func balanceScore(s treasury.Summary) float64 {
	surplus := s.TotalSurplus.InexactFloat64()
	debt := s.TotalDebt.InexactFloat64()
	if surplus+debt == 0 {
		if s.IsInDebt {
			return 25
		}
		return 75
	}
	return 100 * surplus / (surplus + debt)
}

func growthScore(annualPercent float64) float64 {
	return bound(50 + annualPercent*10)
}

func inflationScore(inflation, target float64) float64 {
	return bound(100 - math.Abs(inflation-target)*15)
}

// laborScore is full at or below the natural rate and loses 12 points per
// point of unemployment above it.
func laborScore(unemployment, natural float64) float64 {
	return bound(100 - math.Max(0, unemployment-natural)*12)
}

func passScore(a legislature.Accumulation) float64 {
	if a.PassedLaws+a.RejectedLaws == 0 {
		return 50
	}
	return a.PassRate
}

func policyScore(enacted int) float64 {
	return bound(float64(enacted) * 20)
}

func bound(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// Aggregator remembers the last scorecard. It is nil until the character first
// holds office.
type Aggregator struct {
	last *Stats
}

// Update recomputes and stores the scorecard.
func (a *Aggregator) Update(in Inputs) Stats {
	s := Compute(in)
	a.last = &s
	return s
}

// Last returns the most recent scorecard, or nil.
func (a *Aggregator) Last() *Stats {
	if a.last == nil {
		return nil
	}
	s := *a.last
	s.Departments = append([]Department(nil), a.last.Departments...)
	return &s
}

// Restore sets the remembered scorecard from a snapshot.
func (a *Aggregator) Restore(s *Stats) {
	a.last = s
}
