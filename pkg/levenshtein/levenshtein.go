package levenshtein

import (
	"slices"

	"github.com/matzehuels/storyflow/pkg/errors"
)

// Distance returns the Levenshtein edit distance between a and b, counted
// in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	// The row tracks the shorter string.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return len(rb)
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j, cb := range rb {
		diag := row[0] // row[i-1] of the previous pass
		row[0] = j + 1
		for i, ca := range ra {
			above := row[i+1]
			if ca == cb {
				row[i+1] = diag
			} else {
				row[i+1] = 1 + min(diag, above, row[i])
			}
			diag = above
		}
	}
	return row[len(ra)]
}

// Match is a candidate paired with its distance to a target.
type Match struct {
	Candidate string
	Distance  int
}

// NearestMatch returns the candidate closest to target.
// Ties resolve to the earliest candidate in the given order.
// It returns an EMPTY_CANDIDATE_SET error when candidates is empty.
func NearestMatch(target string, candidates []string) (string, error) {
	m, err := Nearest(target, candidates)
	if err != nil {
		return "", err
	}
	return m.Candidate, nil
}

// Nearest is like [NearestMatch] but also reports the winning distance.
func Nearest(target string, candidates []string) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, errors.EmptyCandidates(target)
	}
	best := Match{Candidate: candidates[0], Distance: Distance(target, candidates[0])}
	for _, c := range candidates[1:] {
		if d := Distance(target, c); d < best.Distance {
			best = Match{Candidate: c, Distance: d}
		}
	}
	return best, nil
}

// Rank returns all candidates ordered by ascending distance to target.
// Equal distances keep the supplied order.
func Rank(target string, candidates []string) []Match {
	ranked := make([]Match, len(candidates))
	for i, c := range candidates {
		ranked[i] = Match{Candidate: c, Distance: Distance(target, c)}
	}
	slices.SortStableFunc(ranked, func(x, y Match) int { return x.Distance - y.Distance })
	return ranked
}

// Similarity expresses the distance between a and b as a percentage of the
// longer string's length: 100 means identical, 0 means nothing in common.
// Two empty strings are 100% similar.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	return float64(longest-Distance(a, b)) / float64(longest) * 100
}
