// Package ingestion loads monthly search-interest CSV exports and turns
// them into clean, contiguous series.
package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"search-interest-lab/internal/domain"
)

// Export value conventions used by trends exports.
const (
	// belowOneValue replaces the "<1" marker: interest was present but
	// below the export's 1-point resolution.
	belowOneValue = 0.5
)

var (
	// ErrNoData is returned when the CSV contains no data rows.
	ErrNoData = errors.New("no data rows in csv")

	// ErrDuplicateMonth is returned when a month appears twice.
	ErrDuplicateMonth = errors.New("duplicate month in csv")

	// ErrNonContiguous is returned when months do not advance one at a time.
	ErrNonContiguous = errors.New("months are not contiguous")
)

// RawSeries is a parsed export before imputation. Gaps carry NaN.
type RawSeries struct {
	SeriesID string
	Start    domain.Month
	Values   []float64 // NaN marks a missing month
	BelowOne []bool    // true where the export carried "<1"
}

// ParseFile loads a two-column (month, interest) CSV from disk.
func ParseFile(path, seriesID string) (*RawSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return Parse(f, seriesID)
}

// Parse loads a two-column (month, interest) CSV.
// Month must be YYYY-MM. Values may be integers, "<1" (mapped to 0.5), or
// empty/NA (recorded as a gap for imputation). A header row is detected by
// an unparsable first month and skipped.
func Parse(r io.Reader, seriesID string) (*RawSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var (
		start    domain.Month
		expected domain.Month
		values   []float64
		belowOne []bool
		first    = true
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		monthStr := strings.TrimSpace(record[0])
		month, err := domain.ParseMonth(monthStr)
		if err != nil {
			if first {
				// Header row ("Month,Interest" or similar).
				continue
			}
			return nil, err
		}

		if first {
			start = month
			expected = month
			first = false
		} else {
			if month == expected {
				// fall through
			} else if month.Before(expected) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateMonth, month)
			} else {
				return nil, fmt.Errorf("%w: expected %s, got %s", ErrNonContiguous, expected, month)
			}
		}

		value, isBelowOne, err := parseValue(record[1])
		if err != nil {
			return nil, fmt.Errorf("month %s: %w", month, err)
		}

		values = append(values, value)
		belowOne = append(belowOne, isBelowOne)
		expected = expected.Next()
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	return &RawSeries{
		SeriesID: seriesID,
		Start:    start,
		Values:   values,
		BelowOne: belowOne,
	}, nil
}

// parseValue parses one interest cell.
func parseValue(cell string) (value float64, isBelowOne bool, err error) {
	s := strings.TrimSpace(strings.Trim(cell, "\""))
	switch s {
	case "", "NA", "NaN", "null":
		return math.NaN(), false, nil
	case "<1":
		return belowOneValue, true, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse interest value %q: %w", s, err)
	}
	if v < 0 {
		return 0, false, fmt.Errorf("negative interest value %v", v)
	}
	return v, false, nil
}

// GapCount returns the number of missing months in the raw series.
func (r *RawSeries) GapCount() int {
	n := 0
	for _, v := range r.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// BelowOneCount returns the number of "<1" months.
func (r *RawSeries) BelowOneCount() int {
	n := 0
	for _, b := range r.BelowOne {
		if b {
			n++
		}
	}
	return n
}
