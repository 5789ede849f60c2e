package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type VideoDTO struct {
	ID              string     `json:"id"`
	CategoryID      string     `json:"categoryId"`
	InstructorID    *string    `json:"instructorId,omitempty"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Summary         string     `json:"summary"`
	MinTier         string     `json:"minTier"`
	ProviderAssetID *string    `json:"providerAssetId,omitempty"`
	ProviderStatus  string     `json:"providerStatus"`
	PlaybackURL     string     `json:"playbackUrl,omitempty"`
	ThumbnailURL    string     `json:"thumbnailUrl,omitempty"`
	DurationSeconds *int       `json:"durationSeconds,omitempty"`
	Status          string     `json:"status"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	ViewCount       int64      `json:"viewCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type VideoPage struct {
	Items    []VideoDTO `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

type VideoCreateRequest struct {
	CategoryID      string  `json:"categoryId"`
	InstructorID    *string `json:"instructorId"`
	Title           string  `json:"title"`
	Summary         string  `json:"summary"`
	MinTier         string  `json:"minTier"`
	ProviderAssetID *string `json:"providerAssetId"`
}

type VideoUpdateRequest struct {
	CategoryID      *string `json:"categoryId"`
	InstructorID    *string `json:"instructorId"`
	Title           *string `json:"title"`
	Summary         *string `json:"summary"`
	MinTier         *string `json:"minTier"`
	ProviderAssetID *string `json:"providerAssetId"`
	ThumbnailMedia  *string `json:"thumbnailMediaId"`
}

func (s *Server) AdminListVideos(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	pageSize := parseInt(r.URL.Query().Get("pageSize"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	categoryID := strings.TrimSpace(r.URL.Query().Get("categoryId"))

	conditions := []string{}
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(lower(title) LIKE $%d OR lower(summary) LIKE $%d)", len(args), len(args)))
	}
	if status != "" && services.IsVideoStatus(status) {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if categoryID != "" {
		args = append(args, categoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	var total int
	if err := s.DB.Get(&total, "SELECT count(*) FROM videos "+where, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	args = append(args, pageSize, (page-1)*pageSize)
	rows := []videoRow{}
	query := fmt.Sprintf(`
SELECT id, category_id, instructor_id, title, slug, summary, min_tier, provider_asset_id,
       provider_status, playback_id, duration_seconds, thumbnail_media_id, status,
       published_at, view_count, created_at, updated_at
FROM videos
%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	if err := s.DB.Select(&rows, query, args...); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]VideoDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.videoDTO(row))
	}
	WriteJSON(w, http.StatusOK, VideoPage{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req VideoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title, err := services.NormalizeRequired(req.Title, "Video title is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var categoryExists bool
	_ = s.DB.Get(&categoryExists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, req.CategoryID)
	if !categoryExists {
		WriteError(w, http.StatusBadRequest, "Unknown category")
		return
	}
	if req.InstructorID != nil && *req.InstructorID != "" {
		var instructorExists bool
		_ = s.DB.Get(&instructorExists, `SELECT EXISTS(SELECT 1 FROM instructors WHERE id = $1)`, *req.InstructorID)
		if !instructorExists {
			WriteError(w, http.StatusBadRequest, "Unknown instructor")
			return
		}
	}
	minTier, err := services.NormalizeTier(req.MinTier)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusBadRequest, "Unknown subscription tier")
		}
		return
	}
	slug, err := services.ResolveSlug(s.DB, "videos", title)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	videoID := uuid.NewString()
	now := time.Now().UTC()
	providerStatus := "UPLOADING"
	if req.ProviderAssetID != nil && *req.ProviderAssetID != "" {
		providerStatus = "PROCESSING"
	}
	_, err = s.DB.Exec(`
INSERT INTO videos (id, category_id, instructor_id, title, slug, summary, min_tier,
                    provider_asset_id, provider_status, status, view_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'DRAFT',0,$10,$10)
`, videoID, req.CategoryID, req.InstructorID, title, slug, strings.TrimSpace(req.Summary), minTier,
		req.ProviderAssetID, providerStatus, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeVideo(w, videoID)
}

func (s *Server) AdminVideoDetail(w http.ResponseWriter, r *http.Request) {
	s.writeVideo(w, chi.URLParam(r, "videoId"))
}

func (s *Server) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	var req VideoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	row := videoRow{}
	if err := s.DB.Get(&row, `
SELECT id, category_id, instructor_id, title, slug, summary, min_tier, provider_asset_id,
       provider_status, playback_id, duration_seconds, thumbnail_media_id, status,
       published_at, view_count, created_at, updated_at
FROM videos WHERE id = $1
`, videoID); err != nil {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	title := row.Title
	if req.Title != nil {
		value, err := services.NormalizeRequired(*req.Title, "Video title is required")
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		title = value
	}
	categoryID := row.CategoryID
	if req.CategoryID != nil && *req.CategoryID != "" {
		var categoryExists bool
		_ = s.DB.Get(&categoryExists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, *req.CategoryID)
		if !categoryExists {
			WriteError(w, http.StatusBadRequest, "Unknown category")
			return
		}
		categoryID = *req.CategoryID
	}
	minTier := row.MinTier
	if req.MinTier != nil {
		value, err := services.NormalizeTier(*req.MinTier)
		if err != nil {
			if !mapServiceError(w, err) {
				WriteError(w, http.StatusBadRequest, "Unknown subscription tier")
			}
			return
		}
		minTier = value
	}
	summary := row.Summary
	if req.Summary != nil {
		summary = strings.TrimSpace(*req.Summary)
	}
	instructorID := row.InstructorID
	if req.InstructorID != nil {
		if *req.InstructorID == "" {
			instructorID = nil
		} else {
			var instructorExists bool
			_ = s.DB.Get(&instructorExists, `SELECT EXISTS(SELECT 1 FROM instructors WHERE id = $1)`, *req.InstructorID)
			if !instructorExists {
				WriteError(w, http.StatusBadRequest, "Unknown instructor")
				return
			}
			instructorID = req.InstructorID
		}
	}
	providerAssetID := row.ProviderAssetID
	providerStatus := row.ProviderStatus
	if req.ProviderAssetID != nil && *req.ProviderAssetID != "" && (providerAssetID == nil || *providerAssetID != *req.ProviderAssetID) {
		providerAssetID = req.ProviderAssetID
		providerStatus = "PROCESSING"
	}
	thumbnail := row.ThumbnailMedia
	if req.ThumbnailMedia != nil && *req.ThumbnailMedia != "" {
		thumbnail = req.ThumbnailMedia
	}
	_, err := s.DB.Exec(`
UPDATE videos
SET category_id = $2, instructor_id = $3, title = $4, summary = $5, min_tier = $6,
    provider_asset_id = $7, provider_status = $8, thumbnail_media_id = $9, updated_at = $10
WHERE id = $1
`, videoID, categoryID, instructorID, title, summary, minTier, providerAssetID, providerStatus, thumbnail, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeVideo(w, videoID)
}

func (s *Server) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	var thumbnail *string
	if err := s.DB.Get(&thumbnail, `SELECT thumbnail_media_id FROM videos WHERE id = $1`, videoID); err != nil {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	if thumbnail != nil && *thumbnail != "" {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, *thumbnail)
	}
	_, _ = s.DB.Exec(`DELETE FROM videos WHERE id = $1`, videoID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) PublishVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	row := struct {
		ProviderStatus string `db:"provider_status"`
		Status         string `db:"status"`
	}{}
	if err := s.DB.Get(&row, `SELECT provider_status, status FROM videos WHERE id = $1`, videoID); err != nil {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	if row.ProviderStatus != "READY" {
		WriteError(w, http.StatusBadRequest, "Video is still processing")
		return
	}
	now := time.Now().UTC()
	_, _ = s.DB.Exec(`
UPDATE videos
SET status = 'PUBLISHED', published_at = COALESCE(published_at, $2), updated_at = $2
WHERE id = $1
`, videoID, now)
	s.writeVideo(w, videoID)
}

func (s *Server) UnpublishVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	result, err := s.DB.Exec(`UPDATE videos SET status = 'DRAFT', updated_at = $2 WHERE id = $1`, videoID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	s.writeVideo(w, videoID)
}

func (s *Server) ArchiveVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	result, err := s.DB.Exec(`UPDATE videos SET status = 'ARCHIVED', updated_at = $2 WHERE id = $1`, videoID, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	s.writeVideo(w, videoID)
}

func (s *Server) RefreshVideoStatus(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	if _, err := services.RefreshProviderStatus(r.Context(), s.DB, s.Provider, videoID); err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusBadGateway, "Video provider unavailable")
		}
		return
	}
	s.writeVideo(w, videoID)
}

type videoRow struct {
	ID              string     `db:"id"`
	CategoryID      string     `db:"category_id"`
	InstructorID    *string    `db:"instructor_id"`
	Title           string     `db:"title"`
	Slug            string     `db:"slug"`
	Summary         string     `db:"summary"`
	MinTier         string     `db:"min_tier"`
	ProviderAssetID *string    `db:"provider_asset_id"`
	ProviderStatus  string     `db:"provider_status"`
	PlaybackID      *string    `db:"playback_id"`
	DurationSeconds *int       `db:"duration_seconds"`
	ThumbnailMedia  *string    `db:"thumbnail_media_id"`
	Status          string     `db:"status"`
	PublishedAt     *time.Time `db:"published_at"`
	ViewCount       int64      `db:"view_count"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (s *Server) videoDTO(row videoRow) VideoDTO {
	thumbnailURL := services.ThumbnailURL(s.Config.VideoPlaybackBaseURL, row.PlaybackID)
	if row.ThumbnailMedia != nil && *row.ThumbnailMedia != "" {
		thumbnailURL = services.BuildAssetURL(*row.ThumbnailMedia)
	}
	return VideoDTO{
		ID:              row.ID,
		CategoryID:      row.CategoryID,
		InstructorID:    row.InstructorID,
		Title:           row.Title,
		Slug:            row.Slug,
		Summary:         row.Summary,
		MinTier:         row.MinTier,
		ProviderAssetID: row.ProviderAssetID,
		ProviderStatus:  row.ProviderStatus,
		PlaybackURL:     services.PlaybackURL(s.Config.VideoPlaybackBaseURL, row.PlaybackID),
		ThumbnailURL:    thumbnailURL,
		DurationSeconds: row.DurationSeconds,
		Status:          row.Status,
		PublishedAt:     row.PublishedAt,
		ViewCount:       row.ViewCount,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func (s *Server) writeVideo(w http.ResponseWriter, videoID string) {
	row := videoRow{}
	if err := s.DB.Get(&row, `
SELECT id, category_id, instructor_id, title, slug, summary, min_tier, provider_asset_id,
       provider_status, playback_id, duration_seconds, thumbnail_media_id, status,
       published_at, view_count, created_at, updated_at
FROM videos WHERE id = $1
`, videoID); err != nil {
		WriteError(w, http.StatusNotFound, "Video not found")
		return
	}
	WriteJSON(w, http.StatusOK, s.videoDTO(row))
}
