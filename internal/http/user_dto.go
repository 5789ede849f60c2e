package httpapi

import (
	"time"

	"liftacademy-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
)

type ProfileDTO struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Country   *string `json:"country,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

type SubscriptionDTO struct {
	Tier             string     `json:"tier"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty"`
}

type UserDTO struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Status       string           `json:"status"`
	Role         string           `json:"role"`
	Roles        []string         `json:"roles"`
	Profile      *ProfileDTO      `json:"profile,omitempty"`
	Subscription *SubscriptionDTO `json:"subscription,omitempty"`
	LastLoginAt  *time.Time       `json:"lastLoginAt,omitempty"`
}

func buildUserDTO(db *sqlx.DB, userID string) (*UserDTO, error) {
	row := struct {
		ID        string     `db:"id"`
		Email     string     `db:"email"`
		Status    string     `db:"status"`
		LastLogin *time.Time `db:"last_login_at"`
		FirstName *string    `db:"first_name"`
		LastName  *string    `db:"last_name"`
		Phone     *string    `db:"phone"`
		Country   *string    `db:"country"`
		Bio       *string    `db:"bio"`
		AvatarID  *string    `db:"avatar_media_id"`
	}{}
	if err := db.Get(&row, `
SELECT u.id, u.email, u.status, u.last_login_at,
       p.first_name, p.last_name, p.phone, p.country, p.bio, p.avatar_media_id
FROM users u
LEFT JOIN user_profiles p ON p.user_id = u.id
WHERE u.id = $1
`, userID); err != nil {
		return nil, err
	}
	roles, err := services.FetchRoles(db, userID)
	if err != nil {
		return nil, err
	}
	var avatarURL *string
	if row.AvatarID != nil {
		url := services.BuildAssetURL(*row.AvatarID)
		avatarURL = &url
	}
	profile := (*ProfileDTO)(nil)
	if row.FirstName != nil || row.LastName != nil || row.Phone != nil || row.Country != nil || row.Bio != nil || row.AvatarID != nil {
		profile = &ProfileDTO{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Phone:     row.Phone,
			Country:   row.Country,
			Bio:       row.Bio,
			AvatarURL: avatarURL,
		}
	}
	var subDTO *SubscriptionDTO
	if sub, err := services.ActiveSubscriptionFor(db, userID); err == nil && sub != nil {
		subDTO = &SubscriptionDTO{Tier: sub.Tier, Status: sub.Status, CurrentPeriodEnd: sub.CurrentPeriodEnd}
	}
	return &UserDTO{
		ID:           row.ID,
		Email:        row.Email,
		Status:       row.Status,
		Role:         services.PrimaryRole(roles),
		Roles:        roles,
		Profile:      profile,
		Subscription: subDTO,
		LastLoginAt:  row.LastLogin,
	}, nil
}
