// Package levenshtein computes edit distances and nearest-match selections
// over strings.
//
// # Distance
//
// [Distance] is the classic Levenshtein distance: the minimum number of
// single-rune insertions, deletions and substitutions, each costing 1, that
// turn one string into the other. It is case-sensitive and performs no
// normalization; callers normalize before calling.
//
// The implementation keeps a single rolling row sized to the shorter input,
// so auxiliary space is O(min(len(a), len(b))) and time is O(len(a)·len(b)).
//
// # Nearest match
//
// [NearestMatch] picks the candidate with the smallest distance to a target.
// Ties are broken by first occurrence in the supplied candidate order: a later
// candidate only wins with a strictly smaller distance. Callers that need a
// different preference must order candidates accordingly.
//
//	best, err := levenshtein.NearestMatch("unwindToJBWMasterViewController", []string{
//	    "JBWDetailViewController",
//	    "navigationController-rS3-R9-Ivy",
//	    "JBWMasterViewController",
//	})
//	// best == "JBWMasterViewController"
//
// [Rank] returns every candidate with its distance, and [Similarity] expresses
// a distance as a percentage of the longer string, which reporters use to show
// how confident a match is.
package levenshtein
