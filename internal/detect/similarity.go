package detect

import (
	"sort"
	"strings"

	"github.com/fincheckhq/fincheck/internal/models"
)

// SimilarPair is two distinct merchant strings that likely name the same
// business, with their similarity ratio.
type SimilarPair struct {
	Merchant1 string  `json:"merchant1"`
	Merchant2 string  `json:"merchant2"`
	Ratio     float64 `json:"similarity"`
}

// SimilarMerchants compares every pair of distinct merchant names and
// returns the pairs whose case-insensitive similarity meets the configured
// threshold. These usually indicate the same business billing under slightly
// different descriptors, which splits its history across detector groups.
// Results sort by ratio descending, then by name.
func (e *Engine) SimilarMerchants(txns []models.TransactionRecord) []SimilarPair {
	seen := make(map[string]struct{})
	var merchants []string
	for _, t := range txns {
		if _, ok := seen[t.Merchant]; ok {
			continue
		}
		seen[t.Merchant] = struct{}{}
		merchants = append(merchants, t.Merchant)
	}
	sort.Strings(merchants)

	var pairs []SimilarPair
	for i := 0; i < len(merchants); i++ {
		for j := i + 1; j < len(merchants); j++ {
			ratio := similarityRatio(
				strings.ToLower(merchants[i]),
				strings.ToLower(merchants[j]),
			)
			if ratio >= e.cfg.SimilarityThreshold {
				pairs = append(pairs, SimilarPair{
					Merchant1: merchants[i],
					Merchant2: merchants[j],
					Ratio:     ratio,
				})
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].Ratio != pairs[b].Ratio {
			return pairs[a].Ratio > pairs[b].Ratio
		}
		if pairs[a].Merchant1 != pairs[b].Merchant1 {
			return pairs[a].Merchant1 < pairs[b].Merchant1
		}
		return pairs[a].Merchant2 < pairs[b].Merchant2
	})
	return pairs
}

// similarityRatio is the classic Ratcliff-Obershelp measure: twice the total
// matched characters over the combined length. 1.0 for identical strings
// (two empty strings included), 0.0 for nothing in common.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matches := matchingRunes(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matches) / float64(total)
}

// matchingRunes counts matched characters by recursively finding the longest
// common block and matching the regions on either side of it.
func matchingRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	besti, bestj, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a, b, alo, besti, blo, bestj) +
		matchingRunes(a, b, besti+size, ahi, bestj+size, bhi)
}

// longestMatch finds the longest block a[besti:besti+size] ==
// b[bestj:bestj+size] inside the given windows. Ties resolve to the block
// starting earliest in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, size int) {
	b2j := make(map[rune][]int)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > size {
				besti, bestj, size = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, size
}
