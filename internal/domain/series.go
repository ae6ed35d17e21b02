package domain

import (
	"fmt"
	"math"
	"time"
)

// Month identifies a calendar month (year + month number).
// It is the native index of every series in the lab: search-interest
// exports are monthly, and all derived series keep month alignment.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a month in YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Index returns the zero-based offset of m from start, in months.
func (m Month) Index(start Month) int {
	return (m.Year-start.Year)*12 + int(m.Month) - int(start.Month)
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Observation is one month of a search-interest series.
type Observation struct {
	SeriesID string  // series identifier (term + geo hash)
	Month    Month   // calendar month
	Value    float64 // cleaned interest value
	Imputed  bool    // true when the value was filled by imputation
	BelowOne bool    // true when the export carried "<1"
}

// Series is a contiguous monthly series.
// Values[i] belongs to Start advanced by i months.
type Series struct {
	ID     string
	Start  Month
	Values []float64
}

// NewSeries builds a series from contiguous observations.
func NewSeries(id string, start Month, values []float64) *Series {
	return &Series{ID: id, Start: start, Values: values}
}

// Len returns the number of months in the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// MonthAt returns the calendar month of index i.
func (s *Series) MonthAt(i int) Month {
	m := s.Start
	for j := 0; j < i; j++ {
		m = m.Next()
	}
	return m
}

// End returns the last month of the series.
func (s *Series) End() Month {
	if len(s.Values) == 0 {
		return s.Start
	}
	return s.MonthAt(len(s.Values) - 1)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{ID: s.ID, Start: s.Start, Values: values}
}

// Mean returns the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Min returns the smallest value, or NaN for an empty series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, or NaN for an empty series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// MonthsInYear is the seasonal period of every series in the lab.
const MonthsInYear = 12
