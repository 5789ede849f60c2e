package services

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

type CheckoutService struct {
	SecretKey    string
	SuccessURL   string
	CancelURL    string
	TierPriceIDs map[string]string
}

type CreatedCheckout struct {
	SessionID   string
	RedirectURL string
}

// CreateSession opens a hosted checkout session for the given tier and
// records a CREATED row. The success redirect carries the tier and the
// provider session id back so completion can be observed without webhooks.
func (c CheckoutService) CreateSession(db *sqlx.DB, userID, email, tier string) (CreatedCheckout, error) {
	priceID := c.TierPriceIDs[tier]
	if priceID == "" {
		return CreatedCheckout{}, ErrBadRequest("Tier is not available for purchase")
	}
	stripe.Key = c.SecretKey
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.SuccessURL + "?tier=" + url.QueryEscape(tier) + "&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(c.CancelURL + "?session_id={CHECKOUT_SESSION_ID}"),
		ClientReferenceID: stripe.String(userID),
		CustomerEmail:     stripe.String(email),
	}
	sess, err := session.New(params)
	if err != nil {
		return CreatedCheckout{}, WrapError(err, "create checkout session")
	}
	_, err = db.Exec(`
INSERT INTO checkout_sessions (id, user_id, tier, provider_session_id, status, amount_cents, currency, created_at)
VALUES ($1,$2,$3,$4,'CREATED',$5,$6,$7)
`, uuid.NewString(), userID, tier, sess.ID, sess.AmountTotal, string(sess.Currency), time.Now().UTC())
	if err != nil {
		return CreatedCheckout{}, err
	}
	return CreatedCheckout{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

// applyCompletion decides what completing a checkout in the given state does.
// A session already COMPLETED is left untouched so replaying the success
// redirect cannot extend or resurrect a subscription; anything else completes
// now with a one-month period.
func applyCompletion(status string, now time.Time) (activate bool, periodEnd time.Time) {
	if status == "COMPLETED" {
		return false, time.Time{}
	}
	return true, now.AddDate(0, 1, 0)
}

// CompleteSession verifies payment with the provider, marks the checkout
// COMPLETED and activates the subscription. Idempotent: a session already
// completed returns its original result with no side effects.
func (c CheckoutService) CompleteSession(db *sqlx.DB, providerSessionID string) (userID, tier string, err error) {
	row := struct {
		UserID string `db:"user_id"`
		Tier   string `db:"tier"`
		Status string `db:"status"`
	}{}
	if err := db.Get(&row, `
SELECT user_id, tier, status FROM checkout_sessions WHERE provider_session_id = $1
`, providerSessionID); err != nil {
		return "", "", ErrNotFound("Checkout session not found")
	}
	now := time.Now().UTC()
	activate, periodEnd := applyCompletion(row.Status, now)
	if !activate {
		return row.UserID, row.Tier, nil
	}
	if err := c.verifyPaid(providerSessionID); err != nil {
		return "", "", err
	}
	if _, err := db.Exec(`
UPDATE checkout_sessions SET status = 'COMPLETED', completed_at = $2 WHERE provider_session_id = $1
`, providerSessionID, now); err != nil {
		return "", "", err
	}
	if err := ActivateSubscription(db, row.UserID, row.Tier, providerSessionID, periodEnd); err != nil {
		return "", "", err
	}
	return row.UserID, row.Tier, nil
}

// verifyPaid retrieves the session from the provider and requires paid
// status. The success redirect carries only the session id, which the buyer
// also sees before paying, so it proves nothing on its own.
func (c CheckoutService) verifyPaid(providerSessionID string) error {
	stripe.Key = c.SecretKey
	sess, err := session.Get(providerSessionID, nil)
	if err != nil {
		return WrapError(err, "retrieve checkout session")
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return ErrBadRequest("Checkout session is not paid")
	}
	return nil
}

// AbandonSession marks a checkout CANCELED. Completed sessions stay completed.
func AbandonSession(db *sqlx.DB, providerSessionID string) error {
	result, err := db.Exec(`
UPDATE checkout_sessions SET status = 'CANCELED'
WHERE provider_session_id = $1 AND status = 'CREATED'
`, providerSessionID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		var exists bool
		_ = db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM checkout_sessions WHERE provider_session_id = $1)`, providerSessionID)
		if !exists {
			return ErrNotFound("Checkout session not found")
		}
	}
	return nil
}

// BuildDeepLink renders the custom-scheme URL the companion mobile app opens
// after checkout, e.g. liftacademy://checkout/success?tier=ADVANCED&session_id=cs_123.
func BuildDeepLink(scheme, outcome, tier, sessionID string) string {
	values := url.Values{}
	if tier != "" {
		values.Set("tier", tier)
	}
	if sessionID != "" {
		values.Set("session_id", sessionID)
	}
	link := scheme + "://checkout/" + outcome
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}
