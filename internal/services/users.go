package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Role codes, from most to least privileged. Order matters: PrimaryRole
// reports the highest role a user holds.
var RoleCodes = []string{"SUPER_ADMIN", "CONTENT_ADMIN", "SUPPORT_ADMIN", "MEMBER"}

var roleRank = func() map[string]int {
	ranks := make(map[string]int, len(RoleCodes))
	for i, code := range RoleCodes {
		ranks[code] = i
	}
	return ranks
}()

// EnsureRoles inserts any missing role rows at startup.
func EnsureRoles(db *sqlx.DB) error {
	for _, code := range RoleCodes {
		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM roles WHERE code = $1)`, code); err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(`INSERT INTO roles (id, code) VALUES ($1, $2)`, uuid.NewString(), code); err != nil {
			return err
		}
	}
	return nil
}

func IsKnownRole(code string) bool {
	_, ok := roleRank[code]
	return ok
}

// PrimaryRole returns the highest-privilege role in the list, MEMBER if empty.
func PrimaryRole(roles []string) string {
	best := "MEMBER"
	bestRank := roleRank[best]
	for _, code := range roles {
		if rank, ok := roleRank[code]; ok && rank < bestRank {
			best = code
			bestRank = rank
		}
	}
	return best
}

func FetchRoles(db *sqlx.DB, userID string) ([]string, error) {
	roles := []string{}
	err := db.Select(&roles, `
SELECT r.code
FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
ORDER BY r.code
`, userID)
	return roles, err
}

func GrantRole(db *sqlx.DB, userID, roleCode string) error {
	var roleID string
	if err := db.Get(&roleID, `SELECT id FROM roles WHERE code = $1`, roleCode); err != nil {
		return ErrNotFound("Role not found")
	}
	_, err := db.Exec(`
INSERT INTO user_roles (id, user_id, role_id, assigned_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id, role_id) DO NOTHING
`, uuid.NewString(), userID, roleID, time.Now().UTC())
	return err
}

func RevokeRole(db *sqlx.DB, userID, roleCode string) error {
	var roleID string
	if err := db.Get(&roleID, `SELECT id FROM roles WHERE code = $1`, roleCode); err != nil {
		return ErrNotFound("Role not found")
	}
	_, err := db.Exec(`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

func TouchLastSeen(db *sqlx.DB, userID string) error {
	_, err := db.Exec(`UPDATE users SET last_seen_at = $1 WHERE id = $2`, time.Now().UTC(), userID)
	return err
}

func SetLastLogin(db *sqlx.DB, userID string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE users SET last_login_at = $1, last_seen_at = $1 WHERE id = $2`, now, userID)
	return err
}

func GetUserStatus(db *sqlx.DB, userID string) (string, error) {
	var status sql.NullString
	err := db.Get(&status, `SELECT status FROM users WHERE id = $1`, userID)
	if err != nil {
		return "", err
	}
	if status.Valid {
		return status.String, nil
	}
	return "", nil
}
