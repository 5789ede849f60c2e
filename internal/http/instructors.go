package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type InstructorDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Headline     *string `json:"headline,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	AvatarURL    *string `json:"avatarUrl,omitempty"`
	InstagramURL *string `json:"instagramUrl,omitempty"`
	YoutubeURL   *string `json:"youtubeUrl,omitempty"`
}

type InstructorUpsertRequest struct {
	Name          string  `json:"name"`
	Headline      *string `json:"headline"`
	Bio           *string `json:"bio"`
	AvatarMediaID *string `json:"avatarMediaId"`
	InstagramURL  *string `json:"instagramUrl"`
	YoutubeURL    *string `json:"youtubeUrl"`
}

func (s *Server) ListInstructors(w http.ResponseWriter, r *http.Request) {
	rows := []instructorRow{}
	if err := s.DB.Select(&rows, `
SELECT id, name, slug, headline, bio, avatar_media_id, instagram_url, youtube_url
FROM instructors
ORDER BY name ASC
`); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	items := make([]InstructorDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.dto())
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) CreateInstructor(w http.ResponseWriter, r *http.Request) {
	var req InstructorUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name, err := services.NormalizeRequired(req.Name, "Instructor name is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	slug, err := services.ResolveSlug(s.DB, "instructors", name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	instructorID := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.DB.Exec(`
INSERT INTO instructors (id, name, slug, headline, bio, avatar_media_id, instagram_url, youtube_url, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
`, instructorID, name, slug, req.Headline, req.Bio, req.AvatarMediaID, req.InstagramURL, req.YoutubeURL, now)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeInstructor(w, instructorID)
}

func (s *Server) UpdateInstructor(w http.ResponseWriter, r *http.Request) {
	instructorID := chi.URLParam(r, "instructorId")
	var req InstructorUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name, err := services.NormalizeRequired(req.Name, "Instructor name is required")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM instructors WHERE id = $1)`, instructorID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Instructor not found")
		return
	}
	// omitted optional fields keep their current value; send "" to clear
	_, err = s.DB.Exec(`
UPDATE instructors
SET name = $2,
    headline = COALESCE($3, headline),
    bio = COALESCE($4, bio),
    avatar_media_id = COALESCE($5, avatar_media_id),
    instagram_url = COALESCE($6, instagram_url),
    youtube_url = COALESCE($7, youtube_url),
    updated_at = $8
WHERE id = $1
`, instructorID, name, req.Headline, req.Bio, req.AvatarMediaID, req.InstagramURL, req.YoutubeURL, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeInstructor(w, instructorID)
}

func (s *Server) DeleteInstructor(w http.ResponseWriter, r *http.Request) {
	instructorID := chi.URLParam(r, "instructorId")
	var exists bool
	_ = s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM instructors WHERE id = $1)`, instructorID)
	if !exists {
		WriteError(w, http.StatusNotFound, "Instructor not found")
		return
	}
	var hasVideos bool
	_ = s.DB.Get(&hasVideos, `SELECT EXISTS(SELECT 1 FROM videos WHERE instructor_id = $1)`, instructorID)
	if hasVideos {
		WriteError(w, http.StatusBadRequest, "Instructor still has videos")
		return
	}
	var avatarID *string
	_ = s.DB.Get(&avatarID, `SELECT avatar_media_id FROM instructors WHERE id = $1`, instructorID)
	if avatarID != nil && *avatarID != "" {
		_ = services.DeleteAsset(s.DB, s.Config.MediaStoragePath, *avatarID)
	}
	_, _ = s.DB.Exec(`DELETE FROM instructors WHERE id = $1`, instructorID)
	w.WriteHeader(http.StatusNoContent)
}

type instructorRow struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	Slug         string  `db:"slug"`
	Headline     *string `db:"headline"`
	Bio          *string `db:"bio"`
	AvatarID     *string `db:"avatar_media_id"`
	InstagramURL *string `db:"instagram_url"`
	YoutubeURL   *string `db:"youtube_url"`
}

func (row instructorRow) dto() InstructorDTO {
	var avatarURL *string
	if row.AvatarID != nil && *row.AvatarID != "" {
		url := services.BuildAssetURL(*row.AvatarID)
		avatarURL = &url
	}
	return InstructorDTO{
		ID:           row.ID,
		Name:         row.Name,
		Slug:         row.Slug,
		Headline:     row.Headline,
		Bio:          row.Bio,
		AvatarURL:    avatarURL,
		InstagramURL: row.InstagramURL,
		YoutubeURL:   row.YoutubeURL,
	}
}

func (s *Server) writeInstructor(w http.ResponseWriter, instructorID string) {
	row := instructorRow{}
	if err := s.DB.Get(&row, `
SELECT id, name, slug, headline, bio, avatar_media_id, instagram_url, youtube_url
FROM instructors WHERE id = $1
`, instructorID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, row.dto())
}
