package api

import (
	"math"
	"testing"
	"time"
)

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatalf("parseTime should parse RFC3339")
	}
	got := parseTime("2025-12-13T10:11:12.123456")
	if got.IsZero() {
		t.Fatalf("parseTime should parse naive isoformat")
	}
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if parseTime("2025-12-13T10:11:12").IsZero() {
		t.Fatalf("parseTime should accept isoformat without fraction")
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatalf("parseTime should return zero for garbage")
	}
}

func TestClampedSimilarity(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.8234, 0.8234},
		{-0.2, 0},
		{1.7, 1},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := (SubmitResult{Similarity: tc.in}).ClampedSimilarity(); got != tc.want {
			t.Fatalf("ClampedSimilarity(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClusterCloneIsIndependent(t *testing.T) {
	orig := Cluster{ID: "c1", Comments: []Comment{{ID: "a", Text: "x"}}}
	dup := orig.Clone()
	dup.Comments[0].Text = "changed"
	if orig.Comments[0].Text != "x" {
		t.Fatalf("Clone shares comment slice with original")
	}
}
