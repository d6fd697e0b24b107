package detect

import (
	"fmt"
	"math"

	"github.com/fincheckhq/fincheck/internal/models"
)

// DetectDuplicates flags pairs of near-identical charges close together in
// time: same merchant, amounts within DuplicateTolerance, dates within
// DuplicateWindowDays. Each transaction is compared against a bounded
// look-back window over the date-sorted list, which keeps the scan linear on
// large histories. The finding attaches to the later charge.
func (e *Engine) DetectDuplicates(txns []models.TransactionRecord) []models.GriftFinding {
	var findings []models.GriftFinding

	sorted := sortedByDate(txns)
	for i := range sorted {
		curr := sorted[i]
		cd, ok := curr.ParsedDate()
		if !ok {
			continue
		}

		start := i - e.cfg.DuplicateLookback
		if start < 0 {
			start = 0
		}
		for j := start; j < i; j++ {
			prev := sorted[j]
			pd, ok := prev.ParsedDate()
			if !ok {
				continue
			}

			daysApart := int(math.Abs(cd.Sub(pd).Hours() / 24))
			if daysApart > e.cfg.DuplicateWindowDays {
				continue
			}
			if curr.Merchant != prev.Merchant {
				continue
			}
			if math.Abs(curr.Amount-prev.Amount) >= e.cfg.DuplicateTolerance {
				continue
			}

			findings = append(findings, models.GriftFinding{
				TransactionID: curr.ID,
				Kind:          models.FindingDuplicate,
				Severity:      models.SeverityHigh,
				Description: fmt.Sprintf(
					"Potential duplicate: %s charged $%.2f on %s, similar charge on %s (%d days apart). Verify this isn't a billing error.",
					curr.Merchant, curr.Amount, prev.Date, curr.Date, daysApart),
			})
		}
	}

	return findings
}
