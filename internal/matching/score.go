// Package matching pairs lost reports with found reports. Candidates are
// items of the opposite type in the same category; each candidate gets an
// additive point score so the UI can rank suggestions.
package matching

import (
	"strings"
	"time"

	"github.com/khojpayo/khojpayo-backend/model"
)

// Score weights
const (
	scoreCategory     = 50
	scoreDistrict     = 20
	scoreMunicipality = 10
	scoreDateWindow   = 15
	scorePerKeyword   = 5
	maxKeywordScore   = 25

	dateWindow = 7 * 24 * time.Hour
)

// Match is a scored candidate pairing
type Match struct {
	Item  model.Item `json:"item"`
	Score int        `json:"score"`
}

// Score rates how well candidate matches the report. Zero means not a
// candidate at all (same type or different category).
func Score(report, candidate model.Item) int {
	if candidate.Type != report.Type.Opposite() {
		return 0
	}
	if !strings.EqualFold(report.Category, candidate.Category) {
		return 0
	}

	score := scoreCategory

	if report.District != "" && strings.EqualFold(report.District, candidate.District) {
		score += scoreDistrict
		if report.Municipality != "" && strings.EqualFold(report.Municipality, candidate.Municipality) {
			score += scoreMunicipality
		}
	}

	if !report.OccurredAt.IsZero() && !candidate.OccurredAt.IsZero() {
		gap := report.OccurredAt.Sub(candidate.OccurredAt)
		if gap < 0 {
			gap = -gap
		}
		if gap <= dateWindow {
			score += scoreDateWindow
		}
	}

	score += keywordOverlap(report.Title+" "+report.Description, candidate.Title+" "+candidate.Description)

	return score
}

// keywordOverlap awards points per shared word, capped. Short words carry no
// signal and are skipped.
func keywordOverlap(a, b string) int {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		if len(w) >= 4 {
			words[w] = true
		}
	}

	score := 0
	seen := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if len(w) < 4 || seen[w] || !words[w] {
			continue
		}
		seen[w] = true
		score += scorePerKeyword
		if score >= maxKeywordScore {
			return maxKeywordScore
		}
	}
	return score
}

// Rank scores candidates against the report, drops non-candidates, and
// returns the result ordered best first.
func Rank(report model.Item, candidates []model.Item) []Match {
	matches := []Match{}
	for _, candidate := range candidates {
		if candidate.Key == report.Key {
			continue
		}
		if s := Score(report, candidate); s > 0 {
			matches = append(matches, Match{Item: candidate, Score: s})
		}
	}

	// insertion sort; candidate lists are small
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Score > matches[j-1].Score; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	return matches
}
