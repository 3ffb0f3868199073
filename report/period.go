// Package report aggregates invoice totals by period for the summary, driver and sales-tax reports.
package report

import (
	"fmt"
	"strings"
	"time"

	"ssincom-backend/utils"
)

type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
	Year  Granularity = "year"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Day, nil
	case Day, Month, Year:
		return g, nil
	default:
		return "", fmt.Errorf("granularity must be day, month or year")
	}
}

// Label is the period key of t: 2025-01-31, 2025-01 or 2025.
func (g Granularity) Label(t time.Time) string {
	switch g {
	case Month:
		return t.Format("2006-01")
	case Year:
		return t.Format("2006")
	default:
		return t.Format(time.DateOnly)
	}
}

// Range is an inclusive date range; a zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) Contains(t time.Time) bool {
	d := utils.DateOnly(t)
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Query holds the period filters shared by the report endpoints.
type Query struct {
	Start string `query:"start"`
	End   string `query:"end"`
	Month string `query:"month"` // YYYY-MM
	Year  int    `query:"year"`
}

// MonthRange returns the first and last day of a YYYY-MM month.
func MonthRange(month string) (Range, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return Range{}, fmt.Errorf("month must be YYYY-MM")
	}
	return Range{From: t, To: t.AddDate(0, 1, -1)}, nil
}

func YearRange(year int) (Range, error) {
	if year < 2000 || year > 2100 {
		return Range{}, fmt.Errorf("year must be between 2000 and 2100")
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Range{From: from, To: from.AddDate(1, 0, -1)}, nil
}

// DateRange parses optional start/end dates in any accepted form.
func DateRange(start, end string) (Range, error) {
	var r Range
	if strings.TrimSpace(start) != "" {
		t, ok := utils.ParseDate(start)
		if !ok {
			return Range{}, fmt.Errorf("invalid start date %q", start)
		}
		r.From = t
	}
	if strings.TrimSpace(end) != "" {
		t, ok := utils.ParseDate(end)
		if !ok {
			return Range{}, fmt.Errorf("invalid end date %q", end)
		}
		r.To = t
	}
	return r, nil
}

// ForGranularity picks the filter that belongs to g: start/end for day, month for month, year for year.
// A missing month or year leaves the range open.
func (q Query) ForGranularity(g Granularity) (Range, error) {
	switch g {
	case Month:
		if q.Month == "" {
			return Range{}, nil
		}
		return MonthRange(q.Month)
	case Year:
		if q.Year == 0 {
			return Range{}, nil
		}
		return YearRange(q.Year)
	default:
		return DateRange(q.Start, q.End)
	}
}

// Resolve prefers month, then year, then start/end.
func (q Query) Resolve() (Range, error) {
	switch {
	case q.Month != "":
		return MonthRange(q.Month)
	case q.Year != 0:
		return YearRange(q.Year)
	default:
		return DateRange(q.Start, q.End)
	}
}
