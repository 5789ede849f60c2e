package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type PublicVideoDTO struct {
	ID              string     `json:"id"`
	CategorySlug    string     `json:"categorySlug"`
	InstructorName  *string    `json:"instructorName,omitempty"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Summary         string     `json:"summary"`
	MinTier         string     `json:"minTier"`
	ThumbnailURL    string     `json:"thumbnailUrl,omitempty"`
	DurationSeconds *int       `json:"durationSeconds,omitempty"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	ViewCount       int64      `json:"viewCount"`
	PlaybackURL     string     `json:"playbackUrl,omitempty"`
	Locked          bool       `json:"locked"`
}

func (s *Server) PublicDisciplines(w http.ResponseWriter, r *http.Request) {
	s.ListDisciplines(w, r)
}

func (s *Server) PublicCategories(w http.ResponseWriter, r *http.Request) {
	s.ListCategories(w, r)
}

func (s *Server) PublicVideos(w http.ResponseWriter, r *http.Request) {
	categorySlug := strings.TrimSpace(r.URL.Query().Get("category"))
	disciplineCode := strings.TrimSpace(r.URL.Query().Get("discipline"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	args := []interface{}{}
	where := "WHERE v.status = 'PUBLISHED'"
	if categorySlug != "" {
		args = append(args, categorySlug)
		where += fmt.Sprintf(" AND c.slug = $%d", len(args))
	}
	if disciplineCode != "" {
		args = append(args, disciplineCode)
		where += fmt.Sprintf(" AND d.code = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where += fmt.Sprintf(" AND lower(v.title) LIKE $%d", len(args))
	}
	rows := []publicVideoRow{}
	if err := s.DB.Select(&rows, `
SELECT v.id, c.slug AS category_slug, i.name AS instructor_name, v.title, v.slug, v.summary,
       v.min_tier, v.playback_id, v.thumbnail_media_id, v.duration_seconds, v.published_at, v.view_count
FROM videos v
JOIN categories c ON c.id = v.category_id
JOIN disciplines d ON d.id = c.discipline_id
LEFT JOIN instructors i ON i.id = v.instructor_id
`+where+`
ORDER BY v.published_at DESC
`, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	tier := s.viewerTier(r)
	items := make([]PublicVideoDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.publicVideoDTO(row, tier))
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) PublicVideoDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	row := publicVideoRow{}
	if err := s.DB.Get(&row, `
SELECT v.id, c.slug AS category_slug, i.name AS instructor_name, v.title, v.slug, v.summary,
       v.min_tier, v.playback_id, v.thumbnail_media_id, v.duration_seconds, v.published_at, v.view_count
FROM videos v
JOIN categories c ON c.id = v.category_id
LEFT JOIN instructors i ON i.id = v.instructor_id
WHERE v.slug = $1 AND v.status = 'PUBLISHED'
`, slug); err != nil {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	WriteJSON(w, http.StatusOK, s.publicVideoDTO(row, s.viewerTier(r)))
}

func (s *Server) TrackVideoView(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var videoID string
	if err := s.DB.Get(&videoID, `SELECT id FROM videos WHERE slug = $1 AND status = 'PUBLISHED'`, slug); err != nil {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	var viewerID *string
	if userID := s.optionalUserID(r); userID != "" {
		viewerID = &userID
	}
	ip := clientIP(r)
	if err := services.RecordView(s.DB, videoID, viewerID, &ip); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// viewerTier resolves the caller's active subscription tier when a valid
// access token is sent along. Public routes never fail on a bad token, they
// just treat the caller as anonymous.
func (s *Server) viewerTier(r *http.Request) string {
	userID := s.optionalUserID(r)
	if userID == "" {
		return ""
	}
	sub, err := services.ActiveSubscriptionFor(s.DB, userID)
	if err != nil || sub == nil {
		return ""
	}
	return sub.Tier
}

func (s *Server) optionalUserID(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	token, claims, err := s.Tokens.ParseToken(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	if err != nil || !token.Valid || claims["typ"] != "access" {
		return ""
	}
	userID, _ := claims["sub"].(string)
	return userID
}

type publicVideoRow struct {
	ID              string     `db:"id"`
	CategorySlug    string     `db:"category_slug"`
	InstructorName  *string    `db:"instructor_name"`
	Title           string     `db:"title"`
	Slug            string     `db:"slug"`
	Summary         string     `db:"summary"`
	MinTier         string     `db:"min_tier"`
	PlaybackID      *string    `db:"playback_id"`
	ThumbnailMedia  *string    `db:"thumbnail_media_id"`
	DurationSeconds *int       `db:"duration_seconds"`
	PublishedAt     *time.Time `db:"published_at"`
	ViewCount       int64      `db:"view_count"`
}

func (s *Server) publicVideoDTO(row publicVideoRow, viewerTier string) PublicVideoDTO {
	unlocked := viewerTier != "" && services.TierCovers(viewerTier, row.MinTier)
	dto := PublicVideoDTO{
		ID:              row.ID,
		CategorySlug:    row.CategorySlug,
		InstructorName:  row.InstructorName,
		Title:           row.Title,
		Slug:            row.Slug,
		Summary:         row.Summary,
		MinTier:         row.MinTier,
		DurationSeconds: row.DurationSeconds,
		PublishedAt:     row.PublishedAt,
		ViewCount:       row.ViewCount,
		Locked:          !unlocked,
	}
	dto.ThumbnailURL = services.ThumbnailURL(s.Config.VideoPlaybackBaseURL, row.PlaybackID)
	if row.ThumbnailMedia != nil && *row.ThumbnailMedia != "" {
		dto.ThumbnailURL = services.BuildAssetURL(*row.ThumbnailMedia)
	}
	if unlocked {
		dto.PlaybackURL = services.PlaybackURL(s.Config.VideoPlaybackBaseURL, row.PlaybackID)
	}
	return dto
}
