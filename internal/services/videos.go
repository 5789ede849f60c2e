package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var videoStatuses = map[string]bool{
	"DRAFT":     true,
	"PUBLISHED": true,
	"ARCHIVED":  true,
}

func IsVideoStatus(code string) bool {
	return videoStatuses[code]
}

func Slugify(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

// ResolveSlug finds a free slug in table's slug column, suffixing -2, -3…
// when the base is taken.
func ResolveSlug(db *sqlx.DB, table, title string) (string, error) {
	return resolveSlug(Slugify(title), func(candidate string) (bool, error) {
		var exists bool
		err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE slug = $1)`, candidate)
		return exists, err
	})
}

func resolveSlug(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	counter := 2
	for {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
		counter++
	}
}

func NormalizeRequired(value, message string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrBadRequest(message)
	}
	return trimmed, nil
}

// PlaybackURL builds the HLS URL for a ready asset, empty until the provider
// reports a playback id.
func PlaybackURL(baseURL string, playbackID *string) string {
	if playbackID == nil || strings.TrimSpace(*playbackID) == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + *playbackID + ".m3u8"
}

// ThumbnailURL builds the provider's poster-frame URL for a ready asset.
func ThumbnailURL(baseURL string, playbackID *string) string {
	if playbackID == nil || strings.TrimSpace(*playbackID) == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + *playbackID + "/thumbnail.jpg"
}

// VideoProvider talks to the hosted video service to poll asset processing
// state.
type VideoProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type ProviderAsset struct {
	Status          string
	PlaybackID      string
	DurationSeconds int
}

type providerAssetResponse struct {
	Data struct {
		Status      string  `json:"status"`
		Duration    float64 `json:"duration"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
	} `json:"data"`
}

// GetAsset fetches the current processing state of a hosted asset.
func (p VideoProvider) GetAsset(ctx context.Context, assetID string) (ProviderAsset, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := strings.TrimSuffix(p.BaseURL, "/") + "/video/v1/assets/" + assetID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ProviderAsset{}, err
	}
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return ProviderAsset{}, WrapError(err, "video provider request")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ProviderAsset{}, ErrNotFound("Provider asset not found")
	}
	if resp.StatusCode != http.StatusOK {
		return ProviderAsset{}, fmt.Errorf("video provider status %d", resp.StatusCode)
	}
	var payload providerAssetResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ProviderAsset{}, WrapError(err, "video provider response")
	}
	asset := ProviderAsset{
		Status:          normalizeProviderStatus(payload.Data.Status),
		DurationSeconds: int(payload.Data.Duration),
	}
	if len(payload.Data.PlaybackIDs) > 0 {
		asset.PlaybackID = payload.Data.PlaybackIDs[0].ID
	}
	return asset, nil
}

func normalizeProviderStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "preparing":
		return "PROCESSING"
	case "ready":
		return "READY"
	case "errored":
		return "ERRORED"
	default:
		return "UPLOADING"
	}
}

// RefreshProviderStatus polls the provider for a video's asset and stores
// status, playback id and duration when they change.
func RefreshProviderStatus(ctx context.Context, db *sqlx.DB, provider VideoProvider, videoID string) (ProviderAsset, error) {
	var assetID *string
	if err := db.Get(&assetID, `SELECT provider_asset_id FROM videos WHERE id = $1`, videoID); err != nil {
		return ProviderAsset{}, ErrNotFound("Video not found")
	}
	if assetID == nil || strings.TrimSpace(*assetID) == "" {
		return ProviderAsset{}, ErrBadRequest("Video has no provider asset")
	}
	asset, err := provider.GetAsset(ctx, *assetID)
	if err != nil {
		return ProviderAsset{}, err
	}
	_, err = db.Exec(`
UPDATE videos
SET provider_status = $2,
    playback_id = COALESCE(NULLIF($3, ''), playback_id),
    duration_seconds = CASE WHEN $4 > 0 THEN $4 ELSE duration_seconds END,
    updated_at = $5
WHERE id = $1
`, videoID, asset.Status, asset.PlaybackID, asset.DurationSeconds, time.Now().UTC())
	if err != nil {
		return ProviderAsset{}, err
	}
	return asset, nil
}

// RecordView stores a view beacon and bumps the counter.
func RecordView(db *sqlx.DB, videoID string, viewerUserID, ip *string) error {
	_, err := db.Exec(`
INSERT INTO video_views (id, video_id, viewer_user_id, ip_address, created_at)
VALUES ($1,$2,$3,$4,$5)
`, uuid.NewString(), videoID, viewerUserID, ip, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE videos SET view_count = view_count + 1 WHERE id = $1`, videoID)
	return err
}
