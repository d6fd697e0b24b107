package detect

import (
	"fmt"

	"github.com/fincheckhq/fincheck/internal/models"
)

// DetectPriceIncreases flags merchants whose consecutive charges jumped by
// more than PriceIncreaseAbs dollars or PriceIncreasePct percent. Needs at
// least three charges from the merchant so one-off corrections don't fire.
// Every qualifying jump yields its own finding, attached to the later charge.
func (e *Engine) DetectPriceIncreases(txns []models.TransactionRecord) []models.GriftFinding {
	var findings []models.GriftFinding

	groups := groupByMerchant(txns)
	for _, merchant := range sortedMerchants(groups) {
		group := groups[merchant]
		if len(group) < 3 {
			continue
		}

		sorted := sortedByDate(group)
		for i := 1; i < len(sorted); i++ {
			prev := sorted[i-1].Amount
			curr := sorted[i].Amount
			increase := curr - prev

			pct := 0.0
			if prev > 0 {
				pct = increase / prev * 100
			}
			if increase <= e.cfg.PriceIncreaseAbs && pct <= e.cfg.PriceIncreasePct {
				continue
			}

			findings = append(findings, models.GriftFinding{
				TransactionID: sorted[i].ID,
				Kind:          models.FindingPriceIncrease,
				Severity:      models.SeverityMedium,
				Description: fmt.Sprintf(
					"Price increase detected: %s increased from $%.2f to $%.2f (+$%.2f, +%.1f%%). Were you notified?",
					merchant, prev, curr, increase, pct),
			})
		}
	}

	return findings
}
