package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"liftacademy-backend-go/internal/models"
	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20

type UploadResponse struct {
	AssetID string `json:"assetId"`
	URL     string `json:"url"`
}

func (s *Server) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, services.BucketAvatars, "AVATAR", func(userID, assetID string) {
		now := time.Now().UTC()
		_, _ = s.DB.Exec(`
INSERT INTO user_profiles (user_id, avatar_media_id, created_at, updated_at)
VALUES ($1,$2,$3,$3)
ON CONFLICT (user_id) DO UPDATE SET avatar_media_id = $2, updated_at = $3
`, userID, assetID, now)
	})
}

func (s *Server) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, services.BucketThumbnails, "THUMBNAIL", nil)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, bucket, mediaType string, attach func(userID, assetID string)) {
	userID := CurrentUserID(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()
	contentType := header.Header.Get("Content-Type")
	assetID, url, err := services.SaveMediaAsset(
		s.DB, s.Config.MediaStoragePath, bucket, contentType, header.Filename, mediaType, userID, file)
	if err != nil {
		if !mapServiceError(w, err) {
			WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	if attach != nil {
		attach(userID, assetID)
	}
	WriteJSON(w, http.StatusOK, UploadResponse{AssetID: assetID, URL: url})
}

func (s *Server) MediaContent(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetId")
	row := models.MediaAsset{}
	if err := s.DB.Get(&row, `SELECT bucket, storage_key, content_type FROM media_assets WHERE id = $1`, assetID); err != nil {
		WriteError(w, http.StatusNotFound, "Asset not found")
		return
	}
	path := filepath.Join(s.Config.MediaStoragePath, row.Bucket, row.StorageKey)
	if _, err := os.Stat(path); err != nil {
		WriteError(w, http.StatusNotFound, "Asset not found")
		return
	}
	if row.ContentType != "" {
		w.Header().Set("Content-Type", row.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
