// Package identifier implements the pure per-jurisdiction record-key
// rewriting that turns caller-supplied identifiers into the form a county
// site expects in its URLs and search forms.
package identifier

import (
	"fmt"
	"strings"

	"github.com/situsdata/ownertrace/models"
)

// Step is one deterministic rewrite applied to an identifier. Steps compose
// left to right into a jurisdiction's transform.
type Step func(string) (string, error)

// StripNonNumeric removes every character that is not an ASCII digit.
func StripNonNumeric() Step {
	return func(s string) (string, error) {
		var b strings.Builder
		b.Grow(len(s))
		for _, r := range s {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String(), nil
	}
}

// RemoveSeparator removes every occurrence of a fixed separator.
func RemoveSeparator(sep string) Step {
	return func(s string) (string, error) {
		return strings.ReplaceAll(s, sep, ""), nil
	}
}

// TrimSpace trims surrounding whitespace.
func TrimSpace() Step {
	return func(s string) (string, error) {
		return strings.TrimSpace(s), nil
	}
}

// Uppercase maps the identifier to upper case.
func Uppercase() Step {
	return func(s string) (string, error) {
		return strings.ToUpper(s), nil
	}
}

// ReorderSegments splits the identifier on sep and re-joins the segments in
// the given positional order, without the separator. The input must have at
// least as many segments as the highest referenced position; anything less
// is a VALIDATION_ERROR carrying the offending raw value, never a
// well-formed-looking wrong result.
func ReorderSegments(sep string, order []int) Step {
	required := 0
	for _, idx := range order {
		if idx+1 > required {
			required = idx + 1
		}
	}
	return func(s string) (string, error) {
		segments := strings.Split(s, sep)
		if len(segments) < required {
			return "", models.NewValidationError(
				fmt.Sprintf("identifier %q has %d segment(s), need at least %d", s, len(segments), required),
				nil,
			)
		}
		parts := make([]string, len(order))
		for i, idx := range order {
			parts[i] = segments[idx]
		}
		return strings.Join(parts, ""), nil
	}
}

// Ruleset maps jurisdiction ids to their composed transform steps. The zero
// value is usable; jurisdictions without a rule pass identifiers through
// unchanged.
type Ruleset struct {
	rules map[string][]Step
}

// NewRuleset creates an empty Ruleset.
func NewRuleset() *Ruleset {
	return &Ruleset{rules: make(map[string][]Step)}
}

// Register binds an ordered list of steps to a jurisdiction id, replacing
// any previous rule. Registration happens at startup, before any scraping.
func (r *Ruleset) Register(jurisdictionID string, steps ...Step) {
	r.rules[jurisdictionID] = steps
}

// Transform applies the jurisdiction's steps in order. Identifiers for
// jurisdictions without a registered rule are returned unchanged. Any step
// failure surfaces as a VALIDATION_ERROR with jurisdiction context attached.
func (r *Ruleset) Transform(jurisdictionID, raw string) (string, error) {
	out := raw
	for _, step := range r.rules[jurisdictionID] {
		var err error
		out, err = step(out)
		if err != nil {
			return "", models.Classify(err, models.ErrValidation, "identifier transform failed").
				WithContext(jurisdictionID, raw)
		}
	}
	return out, nil
}
