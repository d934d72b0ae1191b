// Package core provides the farm-transaction domain model.
//
// This file contains COP amount formatting. Amounts are whole-peso integers;
// display groups digits in threes with a period separator (1.234.567 COP).
package core

import "strconv"

// FormatCOP renders an optional amount as Colombian pesos text. A nil amount
// renders as zero, matching the reporting rule that missing sums are 0.
func FormatCOP(n *int64) string {
	if n == nil {
		return Money{}.Format()
	}
	return Money{Amount: *n}.Format()
}

// Format renders the amount as e.g. "1.234.567 COP". Negative amounts group
// the absolute value and prefix a single minus sign; the sign never takes
// part in grouping, so "-150.000 COP" and never "-.150.000 COP".
func (m Money) Format() string {
	n := m.Amount
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	grouped := make([]byte, 0, len(digits)+len(digits)/3)
	for i, c := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, c)
	}

	out := string(grouped) + " " + CurrencyCOP
	if neg {
		return "-" + out
	}
	return out
}
