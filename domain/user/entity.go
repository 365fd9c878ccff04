package user

import (
	"time"
)

// User represents a user record in the system. The password hash and the
// currently active refresh token are never serialized to API responses.
type User struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Username          string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	PasswordHash      string    `gorm:"not null" json:"-"`
	Name              string    `gorm:"size:255" json:"name"`
	Division          string    `gorm:"size:64" json:"division"`
	RefreshToken      string    `gorm:"index" json:"-"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Claims is the non-sensitive subset of a user record that gets embedded
// in signed tokens and returned to callers next to an access token.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

// ClaimsFrom strips a user record down to its token claims.
func ClaimsFrom(u *User) Claims {
	return Claims{
		UserID:   u.ID,
		Username: u.Username,
		Name:     u.Name,
		Division: u.Division,
	}
}

// Session is the result of a successful register or login: a freshly
// minted token pair plus the claims the access token was built from.
// The refresh token travels to the client as a cookie, not in the body.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         Claims `json:"user"`
}
