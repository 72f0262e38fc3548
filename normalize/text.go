// Package normalize holds the pure text utilities shared by extraction and
// validation: HTML block flattening, comparison folding, and the owner /
// address merge rules.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms are elements that introduce a line boundary when flattening a
// markup fragment. County sites split owner and address fragments across an
// unpredictable mix of these.
var blockAtoms = map[atom.Atom]struct{}{
	atom.P:     {},
	atom.Div:   {},
	atom.Tr:    {},
	atom.Td:    {},
	atom.Th:    {},
	atom.Li:    {},
	atom.Table: {},
	atom.Ul:    {},
	atom.Ol:    {},
}

// BlockLines flattens an HTML fragment (or plain text) into an ordered list
// of non-empty trimmed lines. <br> tags and block element boundaries become
// line breaks, entities are decoded, and runs of intra-line whitespace
// collapse to a single space.
func BlockLines(markup string) []string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// The html5 parser never fails on string input in practice; fall
		// back to treating the input as plain text.
		return splitLines(html.UnescapeString(markup))
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			// The tokenizer has already decoded entities in text nodes.
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				b.WriteByte('\n')
			}
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, block := blockAtoms[n.DataAtom]; block {
				b.WriteByte('\n')
			}
		}
	}
	walk(doc)

	return splitLines(b.String())
}

// splitLines canonicalizes line-break markers, trims every line, collapses
// intra-line whitespace, and drops empty lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Fold canonicalizes a string for comparison: lowercase, punctuation
// stripped, whitespace runs collapsed to one space. Never used for display
// or storage.
func Fold(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
		// Punctuation and symbols are dropped.
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MergeOwners joins owner name blocks with a line separator, preserving
// document order and dropping empty entries.
func MergeOwners(names []string) string {
	var kept []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, "\n")
}

// MergeAddresses joins address candidates with a line separator, removing
// duplicates (compared after folding) while preserving first-seen order.
func MergeAddresses(candidates []string) string {
	seen := make(map[string]struct{}, len(candidates))
	var kept []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := Fold(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}
	return strings.Join(kept, "\n")
}
