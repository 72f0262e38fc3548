package identifier

import (
	"errors"
	"testing"

	"github.com/situsdata/ownertrace/models"
)

func TestStripNonNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"R-123-456", "123456"},
		{"0660640130022", "0660640130022"},
		{"abc", ""},
	}
	for _, tt := range tests {
		got, err := StripNonNumeric()(tt.in)
		if err != nil {
			t.Fatalf("StripNonNumeric(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("StripNonNumeric(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReorderSegments(t *testing.T) {
	// Segments [A,B,C,D,E] -> [C,B,A,D,E], re-joined without the separator.
	step := ReorderSegments("-", []int{2, 1, 0, 3, 4})

	got, err := step("11-22-33-44-55")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "3322114455" {
		t.Errorf("ReorderSegments = %q, want %q", got, "3322114455")
	}
}

func TestReorderSegments_Malformed(t *testing.T) {
	step := ReorderSegments("-", []int{2, 1, 0})

	_, err := step("11-22")
	if err == nil {
		t.Fatal("expected VALIDATION_ERROR for 2-segment input, got nil")
	}
	var ce *models.ClassifiedError
	if !errors.As(err, &ce) || ce.Kind != models.ErrValidation {
		t.Errorf("expected kind VALIDATION_ERROR, got %v", err)
	}
}

func TestRuleset_Transform(t *testing.T) {
	rs := NewRuleset()
	rs.Register("leon-fl", TrimSpace(), ReorderSegments("-", []int{2, 1, 0, 3, 4}), StripNonNumeric())
	rs.Register("harris-tx", StripNonNumeric())

	got, err := rs.Transform("leon-fl", " 11-22-33-44-55 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "3322114455" {
		t.Errorf("Transform(leon-fl) = %q, want %q", got, "3322114455")
	}

	got, err = rs.Transform("harris-tx", "066-064-013-0022")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0660640130022" {
		t.Errorf("Transform(harris-tx) = %q, want %q", got, "0660640130022")
	}
}

func TestRuleset_Transform_Default(t *testing.T) {
	rs := NewRuleset()
	got, err := rs.Transform("unknown", "AS-IS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "AS-IS" {
		t.Errorf("no-rule transform = %q, want passthrough", got)
	}
}

func TestRuleset_Transform_MalformedAttachesContext(t *testing.T) {
	rs := NewRuleset()
	rs.Register("leon-fl", ReorderSegments("-", []int{2, 1, 0}))

	_, err := rs.Transform("leon-fl", "11-22")
	var ce *models.ClassifiedError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClassifiedError, got %v", err)
	}
	if ce.Kind != models.ErrValidation {
		t.Errorf("kind = %s, want VALIDATION_ERROR", ce.Kind)
	}
	if ce.JurisdictionID != "leon-fl" || ce.Identifier != "11-22" {
		t.Errorf("missing context: %+v", ce)
	}
}

func TestRuleset_Deterministic(t *testing.T) {
	rs := NewRuleset()
	rs.Register("leon-fl", ReorderSegments("-", []int{2, 1, 0, 3, 4}))

	first, err := rs.Transform("leon-fl", "11-22-33-44-55")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := rs.Transform("leon-fl", "11-22-33-44-55")
		if err != nil || again != first {
			t.Fatalf("transform not deterministic: %q vs %q (err %v)", first, again, err)
		}
	}
}
