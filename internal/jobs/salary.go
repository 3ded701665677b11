package jobs

import (
	"math"
	"strings"
)

// Period is the time unit a provider quotes a salary in.
type Period string

const (
	PeriodYear  Period = "year"
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
	PeriodDay   Period = "day"
	PeriodHour  Period = "hour"
)

// DefaultCurrency is the base currency when none is configured.
const DefaultCurrency = "USD"

var annualMultiplier = map[Period]float64{
	PeriodYear:  1,
	PeriodMonth: 12,
	PeriodWeek:  52,
	PeriodDay:   260,
	PeriodHour:  2080,
}

// ParsePeriod maps provider period spellings onto a Period. It returns an
// empty Period for anything unrecognised.
func ParsePeriod(s string) Period {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "year", "yearly", "annual", "annually", "annum", "per year", "y":
		return PeriodYear
	case "month", "monthly", "per month", "m":
		return PeriodMonth
	case "week", "weekly", "per week", "w":
		return PeriodWeek
	case "day", "daily", "per day", "d":
		return PeriodDay
	case "hour", "hourly", "per hour", "h":
		return PeriodHour
	default:
		return ""
	}
}

// SalaryNormalizer converts provider salary figures into an annual amount in
// a single base currency.
//
// Rates holds how many base-currency units one unit of the keyed currency is
// worth. A currency that is neither the base nor present in Rates cannot be
// converted and yields no salary.
type SalaryNormalizer struct {
	Base  string
	Rates map[string]float64
}

// NewSalaryNormalizer builds a normalizer with upper-cased currency codes.
func NewSalaryNormalizer(base string, rates map[string]float64) *SalaryNormalizer {
	base = normalizeCurrency(base)
	if base == "" {
		base = DefaultCurrency
	}

	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		code = normalizeCurrency(code)
		if code == "" || rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}
		normalized[code] = rate
	}

	return &SalaryNormalizer{Base: base, Rates: normalized}
}

// Annualize picks the upper bound of a salary range (the lower one when the
// upper is missing), converts it to a yearly amount in the base currency and
// rounds it to whole units. It returns nil whenever that is not possible.
func (n *SalaryNormalizer) Annualize(minAmount, maxAmount float64, currency string, period Period) *float64 {
	amount := maxAmount
	if !positive(amount) {
		amount = minAmount
	}
	if !positive(amount) {
		return nil
	}

	multiplier, ok := annualMultiplier[period]
	if !ok {
		return nil
	}

	rate, ok := n.rate(currency)
	if !ok {
		return nil
	}

	annual := math.Round(amount * multiplier * rate)
	if annual <= 0 {
		return nil
	}

	return &annual
}

func (n *SalaryNormalizer) rate(currency string) (float64, bool) {
	base := DefaultCurrency
	if n != nil && n.Base != "" {
		base = n.Base
	}

	code := normalizeCurrency(currency)
	if code == base {
		return 1, true
	}
	if n == nil {
		return 0, false
	}

	rate, ok := n.Rates[code]
	return rate, ok
}

func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	// HeadHunter still reports roubles with the pre-1998 code.
	if code == "RUR" {
		return "RUB"
	}
	return code
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
