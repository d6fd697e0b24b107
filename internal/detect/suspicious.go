package detect

import (
	"fmt"
	"strings"

	"github.com/fincheckhq/fincheck/internal/models"
)

// Name fragments common to hard-to-identify subscription merchants.
var suspiciousNameFragments = []string{
	"WEB SERVICES", "ONLINE SERVICE", "SUBSCRIPTION", "MEMBERSHIP",
	"RECURRING", "AUTOPAY", "DIGITAL", "*TEMP",
}

// DetectSuspiciousMerchants flags repeat merchants that are hard to account
// for: generic service-y names, small habitual charges in the
// SuspiciousMinAvg..SuspiciousMaxAvg band, or both. Single-occurrence
// merchants are never flagged; one generic-looking charge is not a pattern.
func (e *Engine) DetectSuspiciousMerchants(txns []models.TransactionRecord) []models.GriftFinding {
	var findings []models.GriftFinding

	groups := groupByMerchant(txns)
	for _, merchant := range sortedMerchants(groups) {
		group := groups[merchant]
		if len(group) < 2 {
			continue
		}

		upper := strings.ToUpper(merchant)
		genericName := false
		for _, fragment := range suspiciousNameFragments {
			if strings.Contains(upper, fragment) {
				genericName = true
				break
			}
		}

		avg := averageAmount(group)
		smallRecurring := avg >= e.cfg.SuspiciousMinAvg && avg <= e.cfg.SuspiciousMaxAvg
		if !genericName && !smallRecurring {
			continue
		}

		var severity models.Severity
		var desc string
		switch {
		case genericName && smallRecurring:
			severity = models.SeverityHigh
			desc = fmt.Sprintf(
				"Suspicious merchant name: '%s' has a generic name. Charged %d times, $%.2f average. Can you identify this service?",
				merchant, len(group), avg)
		case genericName:
			severity = models.SeverityMedium
			desc = fmt.Sprintf(
				"Suspicious merchant name: '%s' has a generic name. Charged %d times, $%.2f average. Can you identify this service?",
				merchant, len(group), avg)
		default:
			severity = models.SeverityLow
			total := avg * float64(len(group))
			desc = fmt.Sprintf(
				"Small recurring charge: %s charges ~$%.2f regularly (%d times). These small charges add up to $%.2f total. Still needed?",
				merchant, avg, len(group), total)
		}

		sorted := sortedByDate(group)
		findings = append(findings, models.GriftFinding{
			TransactionID: sorted[len(sorted)-1].ID,
			Kind:          models.FindingSuspicious,
			Severity:      severity,
			Description:   desc,
		})
	}

	return findings
}
