package detect

import (
	"fmt"

	"github.com/fincheckhq/fincheck/internal/models"
)

// DetectRecurring flags merchants charging on a roughly monthly cadence.
// A merchant qualifies when at least MonthlyMatchRatio of the gaps between
// its consecutive charges fall inside the monthly window. Severity scales
// with the average charge; the finding attaches to the most recent charge so
// it surfaces next to live spending.
func (e *Engine) DetectRecurring(txns []models.TransactionRecord) []models.GriftFinding {
	var findings []models.GriftFinding

	groups := groupByMerchant(txns)
	for _, merchant := range sortedMerchants(groups) {
		group := groups[merchant]
		if len(group) < 2 {
			continue
		}

		sorted := sortedByDate(group)
		avg := averageAmount(sorted)

		// Gaps are computed only between parseable dates; records whose
		// dates never normalized drop out of the cadence check.
		var gaps []int
		var prev *models.TransactionRecord
		for i := range sorted {
			d, ok := sorted[i].ParsedDate()
			if !ok {
				continue
			}
			if prev != nil {
				pd, _ := prev.ParsedDate()
				gaps = append(gaps, int(d.Sub(pd).Hours()/24))
			}
			prev = &sorted[i]
		}
		if len(gaps) == 0 {
			continue
		}

		monthly := 0
		for _, g := range gaps {
			if g >= e.cfg.MonthlyMinGapDays && g <= e.cfg.MonthlyMaxGapDays {
				monthly++
			}
		}
		if float64(monthly) < float64(len(gaps))*e.cfg.MonthlyMatchRatio {
			continue
		}

		severity := models.SeverityLow
		if avg > 50 {
			severity = models.SeverityMedium
		}
		if avg > 100 {
			severity = models.SeverityHigh
		}

		latest := sorted[len(sorted)-1]
		findings = append(findings, models.GriftFinding{
			TransactionID: latest.ID,
			Kind:          models.FindingRecurring,
			Severity:      severity,
			Description: fmt.Sprintf(
				"Recurring charge: %s appears %d times. $%.2f/month ($%.2f/year). Are you still using this service?",
				merchant, len(group), avg, avg*12),
		})
	}

	return findings
}
