package search

import (
	"strconv"
	"strings"

	"github.com/kasioon/search-gateway/internal/types"
)

// score computes each listing's match score, attaches the breakdown and
// attribute-match classification, and drops any listing that
// either fails the numeric-disagreement exclusion rule or falls below
// e.minScore. Listings are returned ordered by descending score; ties keep
// the storage-layer ordering (boost, priority, created_at, id) already
// applied by the ListingStore query.
func (e *Executor) score(listings []*types.Listing, plan *types.QueryPlan, strategy types.SearchStrategy) []*types.RankedResult {
	results := make([]*types.RankedResult, 0, len(listings))

	for _, listing := range listings {
		result := &types.RankedResult{Listing: listing}
		breakdown := &result.Breakdown

		if plan.LocationCityID != "" && listing.CityID == plan.LocationCityID {
			breakdown.City = true
			result.MatchScore += 30
		} else if plan.LocationText != "" && listing.NeighborhoodID != nil &&
			strings.EqualFold(*listing.NeighborhoodID, plan.LocationText) {
			breakdown.Neighborhood = true
			result.MatchScore += 15
		}

		if plan.TransactionType != "" && listing.TransactionType == plan.TransactionType {
			breakdown.TransactionType = true
			result.MatchScore += 20
		}

		breakdown.TextMatch = textMatchType(listing, plan.ExpandedKeywords)
		switch breakdown.TextMatch {
		case types.MatchTypeExact:
			result.MatchScore += 25
		case types.MatchTypePrefix:
			result.MatchScore += 15
		case types.MatchTypeTrigram:
			result.MatchScore += 8
		}

		attrPoints, matched, unmatched, excluded := scoreAttributes(listing, plan.RequestedAttributes)
		breakdown.AttributePoints = attrPoints
		result.MatchScore += attrPoints
		result.MatchedAttributes = matched
		result.UnmatchedAttributes = unmatched

		if excluded {
			result.MatchScore -= 20
			result.ExclusionReason = "requested numeric attribute disagrees beyond tolerance"
		}

		result.AttributeMatchType = classifyAttributeMatch(len(plan.RequestedAttributes), len(matched))
		result.Note = noteFor(result)

		if result.MatchScore < e.minScore || result.Excluded() {
			continue
		}
		results = append(results, result)
	}

	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].MatchScore > results[j-1].MatchScore; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	return results
}

// trigramSimilarityThreshold mirrors the postgres store's
// similarity(title, ?) >= 0.2 cutoff, so a listing that reached this stage
// through the DB's trigram fuzzy match classifies the same way here.
const trigramSimilarityThreshold = 0.2

func textMatchType(listing *types.Listing, keywords []string) types.MatchType {
	haystacks := []string{strings.ToLower(listing.Title), strings.ToLower(listing.Description)}

	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		for _, h := range haystacks {
			if h == needle {
				return types.MatchTypeExact
			}
		}
	}
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		for _, h := range haystacks {
			if strings.HasPrefix(h, needle) {
				return types.MatchTypePrefix
			}
		}
	}
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		for _, h := range haystacks {
			if strings.Contains(h, needle) || trigramSimilarity(h, needle) >= trigramSimilarityThreshold {
				return types.MatchTypeTrigram
			}
			// A misspelled word inside a longer text scores low against the
			// whole string, so each word is also compared on its own.
			for _, word := range strings.Fields(h) {
				if trigramSimilarity(word, needle) >= trigramSimilarityThreshold {
					return types.MatchTypeTrigram
				}
			}
		}
	}
	return types.MatchTypeNone
}

// trigramSimilarity approximates pg_trgm's similarity(): the Jaccard
// coefficient of the two strings' padded character-trigram sets.
func trigramSimilarity(a, b string) float64 {
	ta := trigramSet(a)
	tb := trigramSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for t := range ta {
		if tb[t] {
			common++
		}
	}
	union := len(ta) + len(tb) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// trigramSet extracts every overlapping 3-rune shingle from s, padded with
// leading/trailing blanks the way pg_trgm pads its input before trigram
// extraction (so boundary characters get their own trigrams too).
func trigramSet(s string) map[string]bool {
	runes := []rune("  " + s + " ")
	set := make(map[string]bool)
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = true
	}
	return set
}

// scoreAttributes applies the +5-per-satisfied-attribute rule (capped at
// +25) and the numeric-disagreement exclusion rule.
func scoreAttributes(listing *types.Listing, requested map[string]string) (points int, matched, unmatched []string, excluded bool) {
	for slug, want := range requested {
		actual, ok := listing.Attribute(slug)
		if !ok {
			unmatched = append(unmatched, slug)
			continue
		}

		if actual.IsNumeric() {
			wantNum, err := strconv.ParseFloat(strings.TrimSpace(want), 64)
			if err != nil {
				unmatched = append(unmatched, slug)
				continue
			}
			diff := absFloat(*actual.NumericValue - wantNum)
			relative := diff / maxFloat(1, wantNum)
			if relative <= 0.1 {
				matched = append(matched, slug)
				points += 5
			} else if relative > 0.5 {
				unmatched = append(unmatched, slug)
				excluded = true
			} else {
				unmatched = append(unmatched, slug)
			}
			continue
		}

		if actual.TextValue != nil {
			actualText := strings.ToLower(strings.TrimSpace(*actual.TextValue))
			wantText := strings.ToLower(strings.TrimSpace(want))
			if actualText == wantText || strings.Contains(actualText, wantText) {
				matched = append(matched, slug)
				points += 5
			} else {
				unmatched = append(unmatched, slug)
			}
		}
	}

	if points > 25 {
		points = 25
	}
	return points, matched, unmatched, excluded
}

func classifyAttributeMatch(requested, matched int) types.AttributeMatchType {
	if requested == 0 || matched == 0 {
		return types.AttributeMatchNone
	}
	if matched == requested {
		return types.AttributeMatchExact
	}
	return types.AttributeMatchPartial
}

func noteFor(r *types.RankedResult) string {
	switch r.AttributeMatchType {
	case types.AttributeMatchExact:
		return "matches all requested attributes"
	case types.AttributeMatchPartial:
		return "matches some requested attributes"
	default:
		return ""
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
