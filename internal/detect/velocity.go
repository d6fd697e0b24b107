package detect

import (
	"sort"

	"github.com/fincheckhq/fincheck/internal/models"
)

// VelocityReport summarizes month-over-month transaction totals. Trend
// fields are only populated once at least two months of history exist.
type VelocityReport struct {
	Months         []string  `json:"months"`
	Spending       []float64 `json:"spending"`
	AverageMonthly float64   `json:"averageMonthly,omitempty"`
	FirstHalfAvg   float64   `json:"firstHalfAvg,omitempty"`
	SecondHalfAvg  float64   `json:"secondHalfAvg,omitempty"`
	Trend          string    `json:"trend,omitempty"`
}

// SpendingVelocity buckets every transaction amount by calendar month,
// regardless of direction, and compares the average of the first half of the
// months against the second half. The trend
// reads increasing when the late average exceeds the early one by the
// configured ratio, decreasing for the mirror case, stable otherwise.
// Records with unparseable dates are excluded.
func (e *Engine) SpendingVelocity(txns []models.TransactionRecord) VelocityReport {
	totals := make(map[string]float64)
	for _, t := range txns {
		d, ok := t.ParsedDate()
		if !ok {
			continue
		}
		totals[d.Format("2006-01")] += t.Amount
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)

	report := VelocityReport{Months: months}
	for _, m := range months {
		report.Spending = append(report.Spending, totals[m])
	}
	if len(months) < 2 {
		return report
	}

	sum := 0.0
	for _, s := range report.Spending {
		sum += s
	}
	report.AverageMonthly = sum / float64(len(months))

	mid := len(months) / 2
	firstSum, secondSum := 0.0, 0.0
	for i, s := range report.Spending {
		if i < mid {
			firstSum += s
		} else {
			secondSum += s
		}
	}
	report.FirstHalfAvg = firstSum / float64(mid)
	report.SecondHalfAvg = secondSum / float64(len(months)-mid)

	switch {
	case report.SecondHalfAvg > report.FirstHalfAvg*e.cfg.VelocityIncreaseRatio:
		report.Trend = "increasing"
	case report.SecondHalfAvg < report.FirstHalfAvg*e.cfg.VelocityDecreaseRatio:
		report.Trend = "decreasing"
	default:
		report.Trend = "stable"
	}
	return report
}
