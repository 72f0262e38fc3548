package normalize

import (
	"reflect"
	"testing"
)

func TestBlockLines(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{
			"br separated",
			"JOHN DOE<br>123 MAIN ST<br/>HOUSTON TX 77002",
			[]string{"JOHN DOE", "123 MAIN ST", "HOUSTON TX 77002"},
		},
		{
			"div blocks",
			"<div>JOHN DOE</div><div>JANE DOE</div>",
			[]string{"JOHN DOE", "JANE DOE"},
		},
		{
			"entities decoded",
			"SMITH &amp; SONS LLC<br>1 OAK&nbsp;AVE",
			[]string{"SMITH & SONS LLC", "1 OAK AVE"},
		},
		{
			"whitespace collapsed and empties dropped",
			"  JOHN   DOE  <br><br>  <br>123 MAIN ST",
			[]string{"JOHN DOE", "123 MAIN ST"},
		},
		{
			"table rows",
			"<table><tr><td>DOE JOHN</td></tr><tr><td>PO BOX 12</td></tr></table>",
			[]string{"DOE JOHN", "PO BOX 12"},
		},
		{
			"plain text passthrough",
			"JOHN DOE\r\n123 MAIN ST\r",
			[]string{"JOHN DOE", "123 MAIN ST"},
		},
		{
			"empty input",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlockLines(tt.markup)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BlockLines(%q) = %#v, want %#v", tt.markup, got, tt.want)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 MAIN ST.", "123 main st"},
		{"  DOE,   JOHN  ", "doe john"},
		{"O'BRIEN & CO.", "obrien co"},
		{"", ""},
		{"...", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFold_Idempotent(t *testing.T) {
	inputs := []string{
		"123 MAIN ST.",
		"DOE,  JOHN & JANE",
		"already folded",
		"",
		"  \t ",
	}
	for _, s := range inputs {
		once := Fold(s)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestMergeOwners(t *testing.T) {
	got := MergeOwners([]string{"JOHN DOE", "JANE DOE"})
	if got != "JOHN DOE\nJANE DOE" {
		t.Errorf("MergeOwners = %q, want %q", got, "JOHN DOE\nJANE DOE")
	}

	if got := MergeOwners([]string{" ", "JOHN DOE", ""}); got != "JOHN DOE" {
		t.Errorf("MergeOwners with blanks = %q, want %q", got, "JOHN DOE")
	}
}

func TestMergeAddresses(t *testing.T) {
	got := MergeAddresses([]string{"1 MAIN ST", "1 MAIN ST", "2 OAK AVE"})
	if got != "1 MAIN ST\n2 OAK AVE" {
		t.Errorf("MergeAddresses = %q, want %q", got, "1 MAIN ST\n2 OAK AVE")
	}

	// Duplicates are detected after folding, but the first-seen original
	// casing is preserved.
	got = MergeAddresses([]string{"1 Main St.", "1 MAIN ST", "2 OAK AVE"})
	if got != "1 Main St.\n2 OAK AVE" {
		t.Errorf("MergeAddresses folded dedupe = %q, want %q", got, "1 Main St.\n2 OAK AVE")
	}
}
