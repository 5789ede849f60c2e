package services

import (
	"testing"
	"time"
)

func TestApplyCompletion(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	activate, periodEnd := applyCompletion("CREATED", now)
	if !activate {
		t.Fatal("fresh session should activate")
	}
	if want := now.AddDate(0, 1, 0); !periodEnd.Equal(want) {
		t.Fatalf("period end = %v, want %v", periodEnd, want)
	}

	// replaying the success redirect must not extend or re-activate
	if activate, _ := applyCompletion("COMPLETED", now.AddDate(0, 1, 2)); activate {
		t.Fatal("completed session must not activate again")
	}

	// a buyer who hit the cancel URL and then paid still completes
	if activate, _ := applyCompletion("CANCELED", now); !activate {
		t.Fatal("canceled session that turns out paid should activate")
	}
}

func TestBuildDeepLink(t *testing.T) {
	cases := []struct {
		name      string
		outcome   string
		tier      string
		sessionID string
		want      string
	}{
		{
			name:      "success with tier and session",
			outcome:   "success",
			tier:      "ADVANCED",
			sessionID: "cs_123",
			want:      "liftacademy://checkout/success?session_id=cs_123&tier=ADVANCED",
		},
		{
			name:      "cancel without tier",
			outcome:   "cancel",
			sessionID: "cs_456",
			want:      "liftacademy://checkout/cancel?session_id=cs_456",
		},
		{
			name:    "cancel with nothing",
			outcome: "cancel",
			want:    "liftacademy://checkout/cancel",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildDeepLink("liftacademy", tc.outcome, tc.tier, tc.sessionID)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
