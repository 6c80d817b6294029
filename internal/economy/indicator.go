package economy

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNonFinite means an indicator would have taken a NaN or infinite value.
	// It is a data-integrity failure: the tick is rejected and the run must stop.
	ErrNonFinite = errors.New("non-finite indicator value")

	// ErrNonMonotonic means a point was appended at or before the last date.
	ErrNonMonotonic = errors.New("indicator dates must increase")
)

// Point is one dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Indicator is an append-only time series. History is never empty, and the
// current value is always the last point.
type Indicator struct {
	Name    string  `json:"name"`
	History []Point `json:"history"`
}

// NewIndicator starts a series with its opening observation.
func NewIndicator(name string, date time.Time, value float64) *Indicator {
	return &Indicator{
		Name:    name,
		History: []Point{{Date: date, Value: value}},
	}
}

func (i *Indicator) clone() *Indicator {
	return &Indicator{Name: i.Name, History: append([]Point(nil), i.History...)}
}

// Current returns the latest value.
func (i *Indicator) Current() float64 {
	return i.History[len(i.History)-1].Value
}

// Last returns the latest point.
func (i *Indicator) Last() Point {
	return i.History[len(i.History)-1]
}

// Len returns the number of observations.
func (i *Indicator) Len() int {
	return len(i.History)
}

// Append records a new observation. Past points are never touched.
func (i *Indicator) Append(date time.Time, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s: %w", i.Name, ErrNonFinite)
	}
	if !date.After(i.Last().Date) {
		return fmt.Errorf("%s at %s: %w", i.Name, date.Format(time.DateOnly), ErrNonMonotonic)
	}
	i.History = append(i.History, Point{Date: date, Value: value})
	return nil
}

// Change returns the fractional change over the last n periods, or 0 when the
// series is too short or the base is zero.
func (i *Indicator) Change(n int) float64 {
	if n <= 0 || len(i.History) <= n {
		n = len(i.History) - 1
	}
	if n <= 0 {
		return 0
	}
	base := i.History[len(i.History)-1-n].Value
	if base == 0 {
		return 0
	}
	return i.Current()/base - 1
}

// Validate checks the series invariants after a restore.
func (i *Indicator) Validate() error {
	if len(i.History) == 0 {
		return fmt.Errorf("%s: empty history", i.Name)
	}
	for k, p := range i.History {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%s point %d: %w", i.Name, k, ErrNonFinite)
		}
		if k > 0 && !p.Date.After(i.History[k-1].Date) {
			return fmt.Errorf("%s point %d: %w", i.Name, k, ErrNonMonotonic)
		}
	}
	return nil
}
