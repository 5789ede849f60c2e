package models

import "time"

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	LastSeenAt   *time.Time `db:"last_seen_at"`
}

type UserProfile struct {
	UserID      string  `db:"user_id"`
	FirstName   *string `db:"first_name"`
	LastName    *string `db:"last_name"`
	Phone       *string `db:"phone"`
	Country     *string `db:"country"`
	Bio         *string `db:"bio"`
	AvatarMedia *string `db:"avatar_media_id"`
}

type Role struct {
	ID   string `db:"id"`
	Code string `db:"code"`
}

type Subscription struct {
	ID                 string     `db:"id"`
	UserID             string     `db:"user_id"`
	Tier               string     `db:"tier"`
	Status             string     `db:"status"`
	CheckoutSessionID  *string    `db:"checkout_session_id"`
	CurrentPeriodStart *time.Time `db:"current_period_start"`
	CurrentPeriodEnd   *time.Time `db:"current_period_end"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type Discipline struct {
	ID        string    `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
}

type Category struct {
	ID           string    `db:"id"`
	DisciplineID string    `db:"discipline_id"`
	Name         string    `db:"name"`
	Slug         string    `db:"slug"`
	SortOrder    int       `db:"sort_order"`
	CreatedAt    time.Time `db:"created_at"`
}

type Instructor struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Slug         string    `db:"slug"`
	Headline     *string   `db:"headline"`
	Bio          *string   `db:"bio"`
	AvatarMedia  *string   `db:"avatar_media_id"`
	InstagramURL *string   `db:"instagram_url"`
	YoutubeURL   *string   `db:"youtube_url"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Video struct {
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

type VideoView struct {
	ID           string    `db:"id"`
	VideoID      string    `db:"video_id"`
	ViewerUserID *string   `db:"viewer_user_id"`
	IPAddress    *string   `db:"ip_address"`
	CreatedAt    time.Time `db:"created_at"`
}

type Question struct {
	ID        string    `db:"id"`
	VideoID   string    `db:"video_id"`
	AuthorID  string    `db:"author_id"`
	Body      string    `db:"body"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Answer struct {
	ID          string    `db:"id"`
	QuestionID  string    `db:"question_id"`
	ResponderID string    `db:"responder_id"`
	Body        string    `db:"body"`
	CreatedAt   time.Time `db:"created_at"`
}

type CheckoutSession struct {
	ID                string     `db:"id"`
	UserID            string     `db:"user_id"`
	Tier              string     `db:"tier"`
	ProviderSessionID string     `db:"provider_session_id"`
	Status            string     `db:"status"`
	AmountCents       int64      `db:"amount_cents"`
	Currency          string     `db:"currency"`
	CreatedAt         time.Time  `db:"created_at"`
	CompletedAt       *time.Time `db:"completed_at"`
}

type MediaAsset struct {
	ID          string    `db:"id"`
	OwnerUserID *string   `db:"owner_user_id"`
	Bucket      string    `db:"bucket"`
	StorageKey  string    `db:"storage_key"`
	Filename    *string   `db:"filename"`
	Type        string    `db:"type"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	Sha256      *string   `db:"sha256"`
	CreatedAt   time.Time `db:"created_at"`
}

type AdminMetricSample struct {
	ID                string    `db:"id"`
	CapturedAt        time.Time `db:"captured_at"`
	ProcessRSSBytes   int64     `db:"process_rss_bytes"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load"`
	SystemCpuLoad     float64   `db:"system_cpu_load"`
}
