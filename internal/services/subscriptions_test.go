package services

import "testing"

func TestNormalizeTier(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"beginner", "BEGINNER", true},
		{" Intermediate ", "INTERMEDIATE", true},
		{"ADVANCED", "ADVANCED", true},
		{"platinum", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeTier(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("NormalizeTier(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("NormalizeTier(%q) expected error", tc.in)
		}
	}
}

func TestTierCovers(t *testing.T) {
	cases := []struct {
		have string
		need string
		want bool
	}{
		{"BEGINNER", "BEGINNER", true},
		{"BEGINNER", "INTERMEDIATE", false},
		{"INTERMEDIATE", "BEGINNER", true},
		{"ADVANCED", "INTERMEDIATE", true},
		{"ADVANCED", "ADVANCED", true},
		{"", "BEGINNER", false},
		{"BEGINNER", "", false},
	}
	for _, tc := range cases {
		if got := TierCovers(tc.have, tc.need); got != tc.want {
			t.Errorf("TierCovers(%q, %q) = %v, want %v", tc.have, tc.need, got, tc.want)
		}
	}
}
