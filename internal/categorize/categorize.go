// Package categorize assigns spending categories to transactions with
// keyword rules. The parser and detectors never depend on it; callers plug a
// Categorizer into the ingestion path when they want categories.
package categorize

import (
	"strings"

	"github.com/fincheckhq/fincheck/internal/models"
)

// Categorizer assigns a spending category from merchant and description text.
type Categorizer interface {
	Categorize(merchant, description string) string
}

// Category rule table: category name to matching keywords.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"Food & Dining", []string{
		"restaurant", "cafe", "coffee", "starbucks", "chipotle", "mcdonalds",
		"burger", "pizza", "sushi", "diner", "grill", "kitchen", "bistro",
		"food", "grocery", "whole foods", "trader joe", "safeway", "kroger",
		"walmart", "target", "costco", "publix", "wegmans", "albertsons",
		"uber eats", "doordash", "grubhub", "postmates", "delivery",
	}},
	{"Transportation", []string{
		"uber", "lyft", "taxi", "gas", "fuel", "shell", "chevron", "exxon",
		"bp", "mobil", "parking", "metro", "transit", "train", "bus",
		"airline", "flight", "car rental", "hertz", "enterprise", "avis",
	}},
	{"Entertainment", []string{
		"netflix", "spotify", "hulu", "disney", "hbo", "amazon prime",
		"apple music", "youtube", "twitch", "movie", "theater", "cinema",
		"concert", "ticket", "event", "game", "playstation", "xbox", "steam",
		"bar", "club", "lounge",
	}},
	{"Shopping", []string{
		"amazon", "ebay", "etsy", "shop", "store", "mall", "boutique",
		"clothing", "apparel", "fashion", "shoes", "nike", "adidas",
		"electronics", "best buy", "apple store", "furniture", "home depot",
		"lowes", "ikea", "department",
	}},
	{"Subscriptions & Memberships", []string{
		"subscription", "membership", "gym", "fitness", "planet fitness",
		"la fitness", "24 hour", "gold's gym", "crossfit", "yoga",
		"monthly", "annual fee", "renewal",
	}},
	{"Utilities & Bills", []string{
		"electric", "power", "gas", "water", "internet", "cable", "phone",
		"wireless", "verizon", "at&t", "t-mobile", "comcast", "spectrum",
		"utility", "bill payment",
	}},
	{"Healthcare", []string{
		"pharmacy", "cvs", "walgreens", "rite aid", "medical", "doctor",
		"hospital", "clinic", "dental", "dentist", "health", "urgent care",
	}},
	{"Travel", []string{
		"hotel", "motel", "resort", "airbnb", "vrbo", "booking", "expedia",
		"airline", "airport", "tsa", "tourism",
	}},
	{"Finance & Insurance", []string{
		"insurance", "bank fee", "atm", "interest", "payment", "loan",
		"credit card", "finance charge", "late fee",
	}},
	{"Personal Care", []string{
		"salon", "spa", "barber", "hair", "nail", "beauty", "cosmetic",
	}},
}

type keywordRule struct {
	keyword  string
	category string
}

// RuleBased matches keywords against the combined merchant and description
// text, first hit wins. Ambiguous keywords that appear under several
// categories resolve to the last category that lists them, checked at the
// position where the keyword first appeared.
type RuleBased struct {
	rules []keywordRule
}

// NewRuleBased builds the keyword index.
func NewRuleBased() *RuleBased {
	index := make(map[string]int)
	var rules []keywordRule
	for _, cat := range categoryRules {
		for _, kw := range cat.keywords {
			kw = strings.ToLower(kw)
			if i, ok := index[kw]; ok {
				rules[i].category = cat.category
				continue
			}
			index[kw] = len(rules)
			rules = append(rules, keywordRule{keyword: kw, category: cat.category})
		}
	}
	return &RuleBased{rules: rules}
}

// Categorize returns the category for a transaction, "Other" when no keyword
// matches.
func (r *RuleBased) Categorize(merchant, description string) string {
	text := strings.ToLower(merchant + " " + description)
	for _, rule := range r.rules {
		if strings.Contains(text, rule.keyword) {
			return rule.category
		}
	}
	return "Other"
}

// Apply fills the Category field of every record that does not have one yet.
func Apply(c Categorizer, txns []models.TransactionRecord) {
	if c == nil {
		return
	}
	for i := range txns {
		if txns[i].Category != "" {
			continue
		}
		txns[i].Category = c.Categorize(txns[i].Merchant, txns[i].Description)
	}
}
