// Package validate implements the fuzzy-match certification harness: a
// normalized edit-distance similarity score, per-field assertions, the
// sequential batch runner, and the file-backed store of saved cases.
package validate

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/situsdata/ownertrace/models"
	"github.com/situsdata/ownertrace/normalize"
)

// PassThreshold is the similarity a field must reach to count as matching.
// It is a global quality bar shared by every jurisdiction.
const PassThreshold = 0.8

// Similarity scores how close an actual value is to the expected one, in
// [0, 1]. Both strings are folded first, so case, punctuation, and
// whitespace differences never cost anything; beyond that the score is one
// minus the normalized Levenshtein distance of the folded strings.
func Similarity(expected, actual string) float64 {
	a := normalize.Fold(expected)
	b := normalize.Fold(actual)
	if a == b {
		return 1.0
	}

	// Levenshtein counts rune edits, so the length must be in runes too or
	// multi-byte characters dilute the distance.
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	// a == b already handled, so longest > 0 here.
	distance := matchr.Levenshtein(a, b)

	score := 1.0 - float64(distance)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}

// Assert compares one field and records whether it clears the threshold.
func Assert(field, expected, actual string) models.Assertion {
	score := Similarity(expected, actual)
	return models.Assertion{
		Field:      field,
		Expected:   expected,
		Actual:     actual,
		Passed:     score >= PassThreshold,
		Similarity: score,
	}
}
