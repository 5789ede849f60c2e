package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"liftacademy-backend-go/internal/services"
)

type CheckoutSessionRequest struct {
	Tier string `json:"tier"`
}

type CheckoutSessionResponse struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"redirectUrl"`
}

type CheckoutOutcomeResponse struct {
	Outcome   string `json:"outcome"`
	Tier      string `json:"tier,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	DeepLink  string `json:"deepLink"`
}

func (s *Server) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	tier, err := services.NormalizeTier(req.Tier)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusBadRequest, "Unknown subscription tier")
		}
		return
	}
	created, err := s.Checkout.CreateSession(s.DB, CurrentUserID(r), CurrentEmail(r), tier)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusBadGateway, "Payment provider unavailable")
		}
		return
	}
	WriteJSON(w, http.StatusOK, CheckoutSessionResponse{
		SessionID:   created.SessionID,
		RedirectURL: created.RedirectURL,
	})
}

// CheckoutSuccess is the hosted-checkout return URL. The payment provider
// redirects the browser here with tier and session_id query params; the
// response carries the app deep link so mobile clients can hand off.
func (s *Server) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "Missing session_id")
		return
	}
	userID, tier, err := s.Checkout.CompleteSession(s.DB, sessionID)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	s.Guard.Invalidate(userID)
	WriteJSON(w, http.StatusOK, CheckoutOutcomeResponse{
		Outcome:   "success",
		Tier:      tier,
		SessionID: sessionID,
		DeepLink:  services.BuildDeepLink(s.Config.DeepLinkScheme, "success", tier, sessionID),
	})
}

func (s *Server) CheckoutCancel(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID != "" {
		if err := services.AbandonSession(s.DB, sessionID); err != nil {
			if !mapServiceError(w, err) {
				WriteError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}
	}
	tier := strings.TrimSpace(r.URL.Query().Get("tier"))
	WriteJSON(w, http.StatusOK, CheckoutOutcomeResponse{
		Outcome:   "cancel",
		Tier:      tier,
		SessionID: sessionID,
		DeepLink:  services.BuildDeepLink(s.Config.DeepLinkScheme, "cancel", tier, sessionID),
	})
}
