// Package report computes calendar reporting periods, aggregates transaction
// totals over them, and renders the fixed-layout text summaries sent back to
// farmers.
package report

import (
	"fmt"
	"strings"

	"finca/internal/core"
)

// Period is one of the four fixed reporting windows.
type Period int

const (
	PeriodWeekly Period = iota
	PeriodMonthly
	PeriodQuarterly
	PeriodYearly
)

// DateRange is an inclusive start/end pair of calendar days. Ranges are only
// produced by the period calculator; nothing else constructs them ad hoc.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// Farmers write periods in Spanish, English, or a mix; each kind accepts a
// small synonym set, matched case-insensitively.
var periodLabels = map[Period][]string{
	PeriodWeekly:    {"semana", "semanal", "weekly", "week"},
	PeriodMonthly:   {"mes", "mensual", "monthly", "month"},
	PeriodQuarterly: {"trimestre", "trimestral", "quarter", "quarterly"},
	PeriodYearly:    {"año", "anual", "year", "yearly", "anio"},
}

var periodTitles = map[Period]string{
	PeriodWeekly:    "Reporte semanal",
	PeriodMonthly:   "Reporte mensual",
	PeriodQuarterly: "Reporte trimestral",
	PeriodYearly:    "Reporte anual",
}

// UnsupportedPeriodError reports a label outside the period vocabulary.
type UnsupportedPeriodError struct {
	Label string
}

func (e *UnsupportedPeriodError) Error() string {
	return fmt.Sprintf("periodo no soportado %q: usa %s", e.Label, strings.Join(SupportedLabels(), " | "))
}

// SupportedLabels returns the canonical label per period kind, in kind order.
func SupportedLabels() []string {
	return []string{"semanal", "mensual", "trimestral", "anual"}
}

// ParsePeriod resolves a freeform label to a period kind.
func ParsePeriod(label string) (Period, error) {
	needle := strings.ToLower(strings.TrimSpace(label))
	for period, labels := range periodLabels {
		for _, l := range labels {
			if needle == l {
				return period, nil
			}
		}
	}
	return 0, &UnsupportedPeriodError{Label: label}
}

// Title returns the report heading for this period kind.
func (p Period) Title() string {
	if title, ok := periodTitles[p]; ok {
		return title
	}
	return "Reporte"
}

// GetRange resolves a period label and computes the range containing ref.
func GetRange(label string, ref core.Date) (DateRange, error) {
	period, err := ParsePeriod(label)
	if err != nil {
		return DateRange{}, err
	}
	return period.Range(ref), nil
}

// Range computes the period of this kind containing ref. The end is always
// the day before the next same-kind period's start; computing it that way
// (instead of hardcoding day counts) makes December→January and Q4→next-year
// rollovers fall out of the date arithmetic.
func (p Period) Range(ref core.Date) DateRange {
	start := p.start(ref)
	next := p.nextStart(start)
	return DateRange{Start: start, End: next.AddDays(-1)}
}

func (p Period) start(ref core.Date) core.Date {
	switch p {
	case PeriodWeekly:
		// Monday through Sunday; Weekday() counts Sunday as 0.
		sinceMonday := (int(ref.Weekday()) + 6) % 7
		return ref.AddDays(-sinceMonday)
	case PeriodMonthly:
		return core.NewDate(ref.Year(), int(ref.Month()), 1)
	case PeriodQuarterly:
		quarter := (int(ref.Month()) - 1) / 3
		return core.NewDate(ref.Year(), 3*quarter+1, 1)
	case PeriodYearly:
		return core.NewDate(ref.Year(), 1, 1)
	}
	return ref
}

func (p Period) nextStart(start core.Date) core.Date {
	switch p {
	case PeriodWeekly:
		return start.AddDays(7)
	case PeriodMonthly:
		return core.DateOf(start.AddDate(0, 1, 0))
	case PeriodQuarterly:
		return core.DateOf(start.AddDate(0, 3, 0))
	case PeriodYearly:
		return core.DateOf(start.AddDate(1, 0, 0))
	}
	return start
}

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d core.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
