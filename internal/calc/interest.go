// Package calc implements the interest and growth calculators.
//
// Calculators work on float64: their inputs are user supplied scenario
// parameters and their outputs are displayed, never stored.
package calc

import (
	"errors"
	"math"
	"strings"
)

const (
	Annual  Frequency = 1
	Monthly Frequency = 12
	Daily   Frequency = 365
)

// Frequency is the number of compounding periods per year.
type Frequency int

var (
	ErrInvalidFrequency = errors.New("invalid compounding frequency")
	ErrOverflow         = errors.New("result is out of range")
)

// Finite reports whether every v is neither NaN nor infinite.
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ParseFrequency accepts "annual", "monthly" or "daily".
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "annual":
		return Annual, nil
	case "monthly":
		return Monthly, nil
	case "daily":
		return Daily, nil
	default:
		return 0, ErrInvalidFrequency
	}
}

func (f Frequency) String() string {
	switch f {
	case Annual:
		return "annual"
	case Monthly:
		return "monthly"
	case Daily:
		return "daily"
	}
	return "unknown"
}

// SimpleInterest returns principal × (1 + rate/100 × years).
func SimpleInterest(principal, rate, years float64) float64 {
	return principal * (1 + rate/100*years)
}

// CompoundInterest returns principal × (1 + rate/100/n)^(n×years).
func CompoundInterest(principal, rate, years float64, n Frequency) float64 {
	periods := float64(n)
	return principal * math.Pow(1+rate/100/periods, periods*years)
}

// Comparison is the side by side result shown by the interest calculator.
type Comparison struct {
	Principal        float64 `json:"principal"`
	Rate             float64 `json:"rate"`
	Years            float64 `json:"years"`
	Frequency        string  `json:"compound"`
	Simple           float64 `json:"simple"`
	SimpleInterest   float64 `json:"simpleInterest"`
	Compound         float64 `json:"compoundTotal"`
	CompoundInterest float64 `json:"compoundInterest"`
}

// Finite reports whether every figure in c can be displayed.
func (c Comparison) Finite() bool {
	return Finite(c.Simple, c.SimpleInterest, c.Compound, c.CompoundInterest)
}

// Compare computes both interest models for the same inputs.
func Compare(principal, rate, years float64, n Frequency) Comparison {
	simple := SimpleInterest(principal, rate, years)
	comp := CompoundInterest(principal, rate, years, n)
	return Comparison{
		Principal:        principal,
		Rate:             rate,
		Years:            years,
		Frequency:        n.String(),
		Simple:           simple,
		SimpleInterest:   simple - principal,
		Compound:         comp,
		CompoundInterest: comp - principal,
	}
}
