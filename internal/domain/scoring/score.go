// Package scoring derives a customer's health risk score from the severities
// of the health problems the customer owns.
//
// The score is a logistic transform of the severity sum S:
//
//	score = 100 * 1 / (1 + e^-(S - 2.8))
//
// with S == 0 pinned to exactly 0.00. Intermediate values are rounded away
// from zero at fixed scales (p to 6 places, the quotient to 4, the result to
// 2) so the published table of scores stays stable, e.g. S=4 yields 76.86.
package scoring

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Midpoint is the severity sum at which the score crosses 50%.
const Midpoint = 2.8

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// MaxScore is the largest score ever reported. Staged rounding would
	// otherwise reach 100.00 once S exceeds 12.
	MaxScore = Score{d: decimal.RequireFromString("99.99")}
)

// Score is a percentage in [0.00, 100.00) with two decimal places. It
// serializes as a bare JSON number.
type Score struct {
	d decimal.Decimal
}

// NewScore parses a score such as "76.86".
func NewScore(s string) (Score, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Score{}, err
	}
	return Score{d: d.Round(2)}, nil
}

func (s Score) String() string { return s.d.StringFixed(2) }

// Cmp returns -1, 0 or 1 as s is less than, equal to or greater than o.
func (s Score) Cmp(o Score) int { return s.d.Cmp(o.d) }

func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Score) UnmarshalJSON(b []byte) error {
	parsed, err := NewScore(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SeveritySum reduces severities to their total. It must agree with the
// SUM(severity) the health-problem store computes for list pages.
func SeveritySum(severities ...int) int {
	total := 0
	for _, sev := range severities {
		total += sev
	}
	return total
}

// RiskScore converts a severity sum into a score.
func RiskScore(severitySum int) Score {
	if severitySum <= 0 {
		return Score{d: decimal.Zero}
	}

	exponent := float64(severitySum) - Midpoint
	p := decimal.NewFromFloat(math.Exp(-exponent)).RoundUp(6)
	quotient := one.Div(one.Add(p)).RoundUp(4)
	score := hundred.Mul(quotient).RoundUp(2)

	if score.GreaterThan(MaxScore.d) {
		return MaxScore
	}
	return Score{d: score}
}
