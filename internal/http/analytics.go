package httpapi

import (
	"net/http"

	"liftacademy-backend-go/internal/services"
)

func (s *Server) AnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := services.Overview(s.DB)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, overview)
}

func (s *Server) AnalyticsSignups(w http.ResponseWriter, r *http.Request) {
	days := clampRange(parseInt(r.URL.Query().Get("days"), 30))
	points, err := services.SignupsPerDay(s.DB, days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

func (s *Server) AnalyticsViews(w http.ResponseWriter, r *http.Request) {
	days := clampRange(parseInt(r.URL.Query().Get("days"), 30))
	points, err := services.ViewsPerDay(s.DB, days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

func (s *Server) AnalyticsRevenue(w http.ResponseWriter, r *http.Request) {
	months := parseInt(r.URL.Query().Get("months"), 12)
	if months < 1 {
		months = 1
	}
	if months > 36 {
		months = 36
	}
	points, err := services.RevenueByMonth(s.DB, months)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

func (s *Server) AnalyticsTopVideos(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	videos, err := services.TopVideos(s.DB, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, videos)
}

func clampRange(days int) int {
	if days < 1 {
		return 1
	}
	if days > 365 {
		return 365
	}
	return days
}
