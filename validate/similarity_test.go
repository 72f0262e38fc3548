package validate

import "testing"

func TestSimilarity_ExactAfterFold(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"123 MAIN ST", "123 main st."},
		{"JOHN DOE", "john  doe"},
		{"", ""},
		{"...", "   "}, // both fold to empty
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", tt.a, tt.b, got)
		}
	}
}

func TestSimilarity_Identity(t *testing.T) {
	inputs := []string{"", "JOHN DOE", "1 MAIN ST, HOUSTON TX 77002", "x"}
	for _, s := range inputs {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"JOHN DOE", "JANE DOE"},
		{"1 MAIN ST", "2 OAK AVE"},
		{"short", "a much longer string entirely"},
		{"", "nonempty"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_Bounded(t *testing.T) {
	pairs := [][2]string{
		{"JOHN DOE", "JANE DOE"},
		{"", "anything at all"},
		{"abc", "xyz"},
		{"identical", "identical"},
		{"a", "completely different and much longer"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestSimilarity_DifferentNamesFailThreshold(t *testing.T) {
	if got := Similarity("JOHN DOE", "JANE DOE"); got >= PassThreshold {
		t.Errorf("Similarity(JOHN DOE, JANE DOE) = %v, want < %v", got, PassThreshold)
	}
}

func TestSimilarity_CloseValuesPassThreshold(t *testing.T) {
	// A single-character typo in a reasonably long address must pass.
	got := Similarity("1234 WESTHEIMER RD HOUSTON TX 77002", "1234 WESTHEIMED RD HOUSTON TX 77002")
	if got < PassThreshold {
		t.Errorf("one-typo similarity = %v, want >= %v", got, PassThreshold)
	}
}

func TestSimilarity_MultiByteRunesScoreByCharacter(t *testing.T) {
	// "josé" is 5 bytes but 4 characters; one edit over 4 characters is
	// 0.75, below the threshold. Byte-length scoring would say 0.8.
	got := Similarity("JOSÉ", "JOSE")
	if got != 0.75 {
		t.Errorf("Similarity(JOSÉ, JOSE) = %v, want 0.75", got)
	}
	if got >= PassThreshold {
		t.Errorf("one edit over four characters = %v, must fail threshold %v", got, PassThreshold)
	}

	// The same one-character slack in a longer accented name still passes.
	long := Similarity("JOSÉ MARÍA GONZÁLEZ", "JOSE MARÍA GONZÁLEZ")
	if long < PassThreshold {
		t.Errorf("one-accent similarity = %v, want >= %v", long, PassThreshold)
	}
}

func TestAssert(t *testing.T) {
	a := Assert("owner_name", "JOHN DOE", "John Doe.")
	if !a.Passed || a.Similarity != 1.0 {
		t.Errorf("Assert exact-after-fold = %+v", a)
	}
	if a.Field != "owner_name" || a.Expected != "JOHN DOE" || a.Actual != "John Doe." {
		t.Errorf("Assert did not preserve inputs: %+v", a)
	}

	b := Assert("owner_name", "JOHN DOE", "JANE DOE")
	if b.Passed {
		t.Errorf("materially different names should fail: %+v", b)
	}
}
