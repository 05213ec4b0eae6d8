package calc

import (
	"errors"
	"fmt"
	"math"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

const (
	// DefaultGrowthRate applies to accounts without an interest rate or
	// with a zero rate.
	DefaultGrowthRate = 7.0

	// ScenarioSpread is the gap in percentage points between the expected
	// rate and the conservative or optimistic one.
	ScenarioSpread = 2.0

	// SampleEvery is the down-sampling step of contribution projections.
	SampleEvery = 3
)

// SnapshotYears are the fixed horizons shown under each growth chart.
var SnapshotYears = []int{5, 10, 20, 30}

var (
	ErrInvalidHorizon  = errors.New("horizon must not be negative")
	ErrUnknownScenario = errors.New("unknown projection scenario")
)

type (
	// GrowthPoint is one year of a multi-scenario projection.
	GrowthPoint struct {
		Offset       int     `json:"offset"`
		Year         int     `json:"year,omitempty"`
		Expected     float64 `json:"expected"`
		Conservative float64 `json:"conservative"`
		Optimistic   float64 `json:"optimistic"`
	}

	Snapshot struct {
		Years int     `json:"years"`
		Value float64 `json:"value"`
	}

	// Params drives a contribution based projection.
	Params struct {
		Months              int     `json:"months"`
		MonthlyContribution float64 `json:"monthlyContribution"`
		AnnualGrowthRate    float64 `json:"annualGrowthRate"`
		StartingValue       float64 `json:"startingValue"`
	}

	MonthPoint struct {
		Month int     `json:"month"`
		Value float64 `json:"value"`
	}
)

// Scenario selects the starting value of a contribution projection.
type Scenario string

const (
	ScenarioSavings  Scenario = "savings"
	ScenarioNetWorth Scenario = "networth"
)

// ParseScenario defaults to savings when s is empty.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(s) {
	case "", ScenarioSavings:
		return ScenarioSavings, nil
	case ScenarioNetWorth:
		return ScenarioNetWorth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScenario, s)
}

// EffectiveRate resolves a missing or zero rate to DefaultGrowthRate.
func EffectiveRate(rate *float64) float64 {
	if rate == nil || *rate == 0 {
		return DefaultGrowthRate
	}
	return *rate
}

func grow(balance, rate float64, years int) float64 {
	return balance * math.Pow(1+rate/100, float64(years))
}

// GrowthProjection returns one point per year for i = 0..horizon. When
// startYear is non-zero each point carries its calendar year.
func GrowthProjection(balance float64, rate *float64, horizon, startYear int) ([]GrowthPoint, error) {
	if horizon < 0 {
		return nil, ErrInvalidHorizon
	}
	r := EffectiveRate(rate)
	out := make([]GrowthPoint, horizon+1)
	for i := range out {
		p := GrowthPoint{
			Offset:       i,
			Expected:     grow(balance, r, i),
			Conservative: grow(balance, r-ScenarioSpread, i),
			Optimistic:   grow(balance, r+ScenarioSpread, i),
		}
		if startYear != 0 {
			p.Year = startYear + i
		}
		out[i] = p
	}
	return out, nil
}

// GrowthSnapshots evaluates the expected series at SnapshotYears.
func GrowthSnapshots(balance float64, rate *float64) []Snapshot {
	r := EffectiveRate(rate)
	out := make([]Snapshot, len(SnapshotYears))
	for i, y := range SnapshotYears {
		out[i] = Snapshot{Years: y, Value: grow(balance, r, y)}
	}
	return out
}

// FullSeries computes the projected total for every month 0..Months.
// Contributions grow as an ordinary annuity when the monthly rate is
// positive and linearly otherwise.
func FullSeries(p Params) []MonthPoint {
	if p.Months < 0 {
		p.Months = 0
	}
	g := p.AnnualGrowthRate / 100 / 12
	out := make([]MonthPoint, p.Months+1)
	for i := range out {
		factor := math.Pow(1+g, float64(i))
		contrib := p.MonthlyContribution * float64(i)
		if g > 0 {
			contrib = p.MonthlyContribution * (factor - 1) / g
		}
		out[i] = MonthPoint{Month: i, Value: roundHalfUp(p.StartingValue*factor + contrib)}
	}
	return out
}

// ContributionProjection is FullSeries keeping only months divisible by
// SampleEvery.
func ContributionProjection(p Params) []MonthPoint {
	full := FullSeries(p)
	out := make([]MonthPoint, 0, len(full)/SampleEvery+1)
	for _, pt := range full {
		if pt.Month%SampleEvery == 0 {
			out = append(out, pt)
		}
	}
	return out
}

// roundHalfUp rounds .5 towards positive infinity, -2.5 becomes -2.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// StartingValue picks the projection base for the given accounts, which
// are expected to be partitioned by mode already.
func StartingValue(s Scenario, accounts []core.Account) (float64, error) {
	switch s {
	case ScenarioSavings:
		return query.SavingsTotal(accounts).InexactFloat64(), nil
	case ScenarioNetWorth:
		return query.NetWorth(accounts).NetWorth.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScenario, string(s))
}
