package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Subscription tiers, lowest to highest.
var TierCodes = []string{"BEGINNER", "INTERMEDIATE", "ADVANCED"}

var tierRank = func() map[string]int {
	ranks := make(map[string]int, len(TierCodes))
	for i, code := range TierCodes {
		ranks[code] = i
	}
	return ranks
}()

// NormalizeTier uppercases and validates a tier name.
func NormalizeTier(raw string) (string, error) {
	tier := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := tierRank[tier]; !ok {
		return "", ErrBadRequest("Unknown subscription tier")
	}
	return tier, nil
}

// TierCovers reports whether a subscriber on tier can watch content gated at
// minTier. Unknown tiers never cover anything.
func TierCovers(tier, minTier string) bool {
	have, ok := tierRank[tier]
	if !ok {
		return false
	}
	need, ok := tierRank[minTier]
	if !ok {
		return false
	}
	return have >= need
}

type ActiveSubscription struct {
	Tier             string     `db:"tier"`
	Status           string     `db:"status"`
	CurrentPeriodEnd *time.Time `db:"current_period_end"`
}

// ActiveSubscriptionFor returns the user's subscription if it is ACTIVE and
// not past its period end, nil otherwise.
func ActiveSubscriptionFor(db *sqlx.DB, userID string) (*ActiveSubscription, error) {
	sub := ActiveSubscription{}
	err := db.Get(&sub, `
SELECT tier, status, current_period_end
FROM subscriptions
WHERE user_id = $1
`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sub.Status != "ACTIVE" {
		return nil, nil
	}
	if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(time.Now().UTC()) {
		return nil, nil
	}
	return &sub, nil
}

// ActivateSubscription upserts the user's subscription after a completed
// checkout. One row per user; re-running for the same session is harmless.
func ActivateSubscription(db *sqlx.DB, userID, tier, checkoutSessionID string, periodEnd time.Time) error {
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO subscriptions (id, user_id, tier, status, checkout_session_id, current_period_start, current_period_end, created_at, updated_at)
VALUES ($1,$2,$3,'ACTIVE',$4,$5,$6,$5,$5)
ON CONFLICT (user_id) DO UPDATE
SET tier = EXCLUDED.tier,
    status = 'ACTIVE',
    checkout_session_id = EXCLUDED.checkout_session_id,
    current_period_start = EXCLUDED.current_period_start,
    current_period_end = EXCLUDED.current_period_end,
    updated_at = EXCLUDED.updated_at
`, uuid.NewString(), userID, tier, checkoutSessionID, now, periodEnd)
	return err
}

func CancelSubscription(db *sqlx.DB, userID string) error {
	_, err := db.Exec(`
UPDATE subscriptions SET status = 'CANCELED', updated_at = $2 WHERE user_id = $1
`, userID, time.Now().UTC())
	return err
}
