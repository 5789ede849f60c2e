package services

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type AnalyticsOverview struct {
	MemberCount         int              `json:"memberCount"`
	ActiveSubscriptions map[string]int   `json:"activeSubscriptionsByTier"`
	PublishedVideoCount int              `json:"publishedVideoCount"`
	PendingQuestions    int              `json:"pendingQuestionCount"`
	ViewsLast30Days     int              `json:"viewsLast30Days"`
	RevenueLast30Days   int64            `json:"revenueCentsLast30Days"`
}

type DailyCount struct {
	Day   time.Time `db:"day" json:"day"`
	Count int       `db:"count" json:"count"`
}

type MonthlyRevenue struct {
	Month time.Time `db:"month" json:"month"`
	Cents int64     `db:"cents" json:"cents"`
}

type TopVideo struct {
	ID        string `db:"id" json:"id"`
	Title     string `db:"title" json:"title"`
	Slug      string `db:"slug" json:"slug"`
	ViewCount int64  `db:"view_count" json:"viewCount"`
}

// Overview aggregates the dashboard headline numbers in real SQL rather than
// generating placeholder values.
func Overview(db *sqlx.DB) (AnalyticsOverview, error) {
	overview := AnalyticsOverview{ActiveSubscriptions: map[string]int{}}
	if err := db.Get(&overview.MemberCount, `SELECT count(*) FROM users`); err != nil {
		return overview, err
	}
	tierRows := []struct {
		Tier  string `db:"tier"`
		Count int    `db:"count"`
	}{}
	if err := db.Select(&tierRows, `
SELECT tier, count(*) AS count
FROM subscriptions
WHERE status = 'ACTIVE'
  AND (current_period_end IS NULL OR current_period_end > now())
GROUP BY tier
`); err != nil {
		return overview, err
	}
	for _, code := range TierCodes {
		overview.ActiveSubscriptions[code] = 0
	}
	for _, row := range tierRows {
		overview.ActiveSubscriptions[row.Tier] = row.Count
	}
	if err := db.Get(&overview.PublishedVideoCount, `SELECT count(*) FROM videos WHERE status = 'PUBLISHED'`); err != nil {
		return overview, err
	}
	if err := db.Get(&overview.PendingQuestions, `SELECT count(*) FROM questions WHERE status = 'PENDING'`); err != nil {
		return overview, err
	}
	if err := db.Get(&overview.ViewsLast30Days, `
SELECT count(*) FROM video_views WHERE created_at > now() - interval '30 days'
`); err != nil {
		return overview, err
	}
	if err := db.Get(&overview.RevenueLast30Days, `
SELECT COALESCE(SUM(amount_cents), 0)
FROM checkout_sessions
WHERE status = 'COMPLETED' AND completed_at > now() - interval '30 days'
`); err != nil {
		return overview, err
	}
	return overview, nil
}

// SignupsPerDay returns daily registration counts for the last `days` days,
// oldest first. Days without signups are absent.
func SignupsPerDay(db *sqlx.DB, days int) ([]DailyCount, error) {
	rows := []DailyCount{}
	err := db.Select(&rows, `
SELECT date_trunc('day', created_at) AS day, count(*) AS count
FROM users
WHERE created_at > now() - ($1 || ' days')::interval
GROUP BY day
ORDER BY day ASC
`, days)
	return rows, err
}

// ViewsPerDay returns daily view-beacon counts for the last `days` days.
func ViewsPerDay(db *sqlx.DB, days int) ([]DailyCount, error) {
	rows := []DailyCount{}
	err := db.Select(&rows, `
SELECT date_trunc('day', created_at) AS day, count(*) AS count
FROM video_views
WHERE created_at > now() - ($1 || ' days')::interval
GROUP BY day
ORDER BY day ASC
`, days)
	return rows, err
}

// RevenueByMonth sums completed checkout amounts per calendar month.
func RevenueByMonth(db *sqlx.DB, months int) ([]MonthlyRevenue, error) {
	rows := []MonthlyRevenue{}
	err := db.Select(&rows, `
SELECT date_trunc('month', completed_at) AS month, COALESCE(SUM(amount_cents), 0) AS cents
FROM checkout_sessions
WHERE status = 'COMPLETED' AND completed_at > now() - ($1 || ' months')::interval
GROUP BY month
ORDER BY month ASC
`, months)
	return rows, err
}

// TopVideos returns the most-viewed published videos.
func TopVideos(db *sqlx.DB, limit int) ([]TopVideo, error) {
	rows := []TopVideo{}
	err := db.Select(&rows, `
SELECT id, title, slug, view_count
FROM videos
WHERE status = 'PUBLISHED'
ORDER BY view_count DESC, published_at DESC
LIMIT $1
`, limit)
	return rows, err
}
