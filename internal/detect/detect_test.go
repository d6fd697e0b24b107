package detect

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincheckhq/fincheck/internal/config"
	"github.com/fincheckhq/fincheck/internal/models"
)

func testDetector() *Engine {
	return New(config.DefaultDetector(), zerolog.Nop())
}

func txn(id, date, merchant string, amount float64) models.TransactionRecord {
	return models.TransactionRecord{
		ID:        id,
		Date:      date,
		Merchant:  merchant,
		Amount:    amount,
		Direction: models.DirectionExpense,
	}
}

func ofKind(findings []models.GriftFinding, kind models.FindingKind) []models.GriftFinding {
	var out []models.GriftFinding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestDetectRecurringMonthlyCadence(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "NETFLIX.COM", 15.49),
		txn("b", "2024-02-14", "NETFLIX.COM", 15.49),
		txn("c", "2024-03-15", "NETFLIX.COM", 15.49),
		txn("d", "2024-01-20", "WHOLE FOODS", 87.12),
	}

	findings := testDetector().DetectRecurring(txns)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, models.FindingRecurring, f.Kind)
	assert.Equal(t, models.SeverityLow, f.Severity)
	assert.Equal(t, "c", f.TransactionID, "finding attaches to the most recent charge")
	assert.Contains(t, f.Description, "NETFLIX.COM appears 3 times")
	assert.Contains(t, f.Description, "$15.49/month")
}

func TestDetectRecurringSeverityScalesWithAmount(t *testing.T) {
	e := testDetector()

	gym := []models.TransactionRecord{
		txn("a", "2024-01-01", "GYM", 75.00),
		txn("b", "2024-01-31", "GYM", 75.00),
	}
	findings := e.DetectRecurring(gym)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityMedium, findings[0].Severity)

	insurance := []models.TransactionRecord{
		txn("a", "2024-01-01", "INSURANCE CO", 150.00),
		txn("b", "2024-01-31", "INSURANCE CO", 150.00),
	}
	findings = e.DetectRecurring(insurance)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityHigh, findings[0].Severity)
}

func TestDetectRecurringIgnoresIrregularGaps(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-01", "CORNER CAFE", 8.00),
		txn("b", "2024-01-03", "CORNER CAFE", 8.00),
		txn("c", "2024-01-10", "CORNER CAFE", 8.00),
		txn("d", "2024-02-25", "CORNER CAFE", 8.00),
	}
	assert.Empty(t, testDetector().DetectRecurring(txns))
}

func TestDetectDuplicates(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "ACME GYM", 49.99),
		txn("b", "2024-01-16", "ACME GYM", 49.99),
		txn("c", "2024-01-20", "STARBUCKS", 5.50),
	}

	findings := testDetector().DetectDuplicates(txns)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, models.FindingDuplicate, f.Kind)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, "b", f.TransactionID, "finding attaches to the later charge")
	assert.Contains(t, f.Description, "1 days apart")
}

func TestDetectDuplicatesRespectsWindow(t *testing.T) {
	// Same merchant and amount, but 8 days apart: outside the window.
	txns := []models.TransactionRecord{
		txn("a", "2024-01-01", "ACME GYM", 49.99),
		txn("b", "2024-01-09", "ACME GYM", 49.99),
	}
	assert.Empty(t, testDetector().DetectDuplicates(txns))
}

func TestDetectDuplicatesRespectsTolerance(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "ACME GYM", 49.99),
		txn("b", "2024-01-16", "ACME GYM", 45.00),
	}
	assert.Empty(t, testDetector().DetectDuplicates(txns))
}

func TestDetectPriceIncreases(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "STREAMFLIX", 9.99),
		txn("b", "2024-02-15", "STREAMFLIX", 9.99),
		txn("c", "2024-03-15", "STREAMFLIX", 15.99),
	}

	findings := testDetector().DetectPriceIncreases(txns)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, models.FindingPriceIncrease, f.Kind)
	assert.Equal(t, models.SeverityMedium, f.Severity)
	assert.Equal(t, "c", f.TransactionID)
	assert.Contains(t, f.Description, "$9.99 to $15.99")
}

func TestDetectPriceIncreasesPercentRule(t *testing.T) {
	// +$1.25 is under the absolute threshold but is a 25% jump.
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "APP SUB", 5.00),
		txn("b", "2024-02-15", "APP SUB", 5.00),
		txn("c", "2024-03-15", "APP SUB", 6.25),
	}
	findings := testDetector().DetectPriceIncreases(txns)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Description, "+25.0%")
}

func TestDetectPriceIncreasesNeedsThree(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "STREAMFLIX", 9.99),
		txn("b", "2024-02-15", "STREAMFLIX", 19.99),
	}
	assert.Empty(t, testDetector().DetectPriceIncreases(txns))
}

func TestDetectSuspiciousMerchants(t *testing.T) {
	txns := []models.TransactionRecord{
		// Generic name and a small average: high severity.
		txn("a", "2024-01-05", "ABC ONLINE SERVICE", 12.99),
		txn("b", "2024-02-05", "ABC ONLINE SERVICE", 12.99),
		// Generic name with a large average: medium.
		txn("c", "2024-01-10", "XYZ WEB SERVICES", 250.00),
		txn("d", "2024-02-10", "XYZ WEB SERVICES", 250.00),
		// Ordinary name, small habitual charge: low.
		txn("e", "2024-01-15", "COFFEE CART", 6.50),
		txn("f", "2024-02-15", "COFFEE CART", 6.50),
		// Generic name but only one occurrence: not flagged.
		txn("g", "2024-01-20", "TEMP DIGITAL SERVICE", 9.99),
	}

	findings := testDetector().DetectSuspiciousMerchants(txns)
	require.Len(t, findings, 3)

	bySeverity := make(map[models.Severity]models.GriftFinding)
	for _, f := range findings {
		bySeverity[f.Severity] = f
	}
	assert.Contains(t, bySeverity[models.SeverityHigh].Description, "ABC ONLINE SERVICE")
	assert.Contains(t, bySeverity[models.SeverityMedium].Description, "XYZ WEB SERVICES")
	assert.Contains(t, bySeverity[models.SeverityLow].Description, "COFFEE CART")
	assert.Contains(t, bySeverity[models.SeverityLow].Description, "add up to $13.00 total")
}

func TestDetectAllSkipsUnparseableDates(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "garbage", "NETFLIX.COM", 15.49),
		txn("b", "2024-02-14", "NETFLIX.COM", 15.49),
		txn("c", "also bad", "ACME GYM", 49.99),
	}
	assert.NotPanics(t, func() {
		testDetector().DetectAll(txns)
	})
}

func TestDetectAllOrderIndependent(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-15", "NETFLIX.COM", 15.49),
		txn("b", "2024-02-14", "NETFLIX.COM", 15.49),
		txn("c", "2024-03-15", "NETFLIX.COM", 15.49),
		txn("d", "2024-01-15", "ACME GYM", 49.99),
		txn("e", "2024-01-16", "ACME GYM", 49.99),
		txn("f", "2024-01-05", "ABC ONLINE SERVICE", 12.99),
		txn("g", "2024-02-05", "ABC ONLINE SERVICE", 12.99),
	}

	e := testDetector()
	baseline := e.DetectAll(txns)
	require.NotEmpty(t, baseline)

	shuffled := make([]models.TransactionRecord, len(txns))
	copy(shuffled, txns)
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, baseline, e.DetectAll(shuffled))
	}
}

func TestSimilarMerchants(t *testing.T) {
	txns := []models.TransactionRecord{
		txn("a", "2024-01-05", "NETFLIX.COM", 15.49),
		txn("b", "2024-02-05", "NETFLIX COM", 15.49),
		txn("c", "2024-01-10", "WHOLE FOODS", 87.12),
	}

	pairs := testDetector().SimilarMerchants(txns)
	require.Len(t, pairs, 1)
	assert.Equal(t, "NETFLIX COM", pairs[0].Merchant1)
	assert.Equal(t, "NETFLIX.COM", pairs[0].Merchant2)
	assert.Greater(t, pairs[0].Ratio, 0.8)
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("netflix", "netflix"))
	assert.Equal(t, 1.0, similarityRatio("", ""))
	assert.Equal(t, 0.0, similarityRatio("abc", "xyz"))
	assert.Equal(t, 0.75, similarityRatio("abcd", "bcde"))
}

func TestSpendingVelocity(t *testing.T) {
	var txns []models.TransactionRecord
	months := []string{"2024-01", "2024-02", "2024-03", "2024-04"}
	amounts := []float64{100, 100, 200, 220}
	for i, m := range months {
		txns = append(txns, txn(strings.ToLower(m), m+"-15", "VARIOUS", amounts[i]))
	}

	report := testDetector().SpendingVelocity(txns)
	require.Equal(t, months, report.Months)
	assert.Equal(t, []float64{100, 100, 200, 220}, report.Spending)
	assert.Equal(t, 155.0, report.AverageMonthly)
	assert.Equal(t, 100.0, report.FirstHalfAvg)
	assert.Equal(t, 210.0, report.SecondHalfAvg)
	assert.Equal(t, "increasing", report.Trend)
}

func TestSpendingVelocityShortHistory(t *testing.T) {
	report := testDetector().SpendingVelocity([]models.TransactionRecord{
		txn("a", "2024-01-15", "VARIOUS", 100),
	})
	assert.Equal(t, []string{"2024-01"}, report.Months)
	assert.Empty(t, report.Trend)
}
