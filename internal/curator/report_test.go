package curator

import "testing"

func TestReportRatios(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		valid       int
		invalid     int
		wantValid   string
		wantInvalid string
	}{
		{"all valid", 3, 3, 0, "100.00%", "0.00%"},
		{"mixed", 1000, 974, 26, "97.40%", "2.60%"},
		{"all invalid", 2, 0, 2, "0.00%", "100.00%"},
		{"empty batch", 0, 0, 0, "n/a", "n/a"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep := Summarize(tc.total, tc.valid, tc.invalid)
			if got := rep.ValidPercent(); got != tc.wantValid {
				t.Errorf("ValidPercent() = %s, want %s", got, tc.wantValid)
			}
			if got := rep.InvalidPercent(); got != tc.wantInvalid {
				t.Errorf("InvalidPercent() = %s, want %s", got, tc.wantInvalid)
			}
		})
	}
}

func TestReportRatioUndefinedForEmptyBatch(t *testing.T) {
	rep := Summarize(0, 0, 0)
	if _, ok := rep.ValidRatio(); ok {
		t.Error("ValidRatio() defined for empty batch")
	}
	if _, ok := rep.InvalidRatio(); ok {
		t.Error("InvalidRatio() defined for empty batch")
	}
}

func TestReportString(t *testing.T) {
	rep := Summarize(4, 3, 1)
	want := "total=4 valid=3 (75.00%) invalid=1 (25.00%)"
	if got := rep.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
