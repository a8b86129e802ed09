package domain

import "time"

// DefaultProfilePic is assigned at signup when no picture is supplied.
const DefaultProfilePic = "/avatar.png"

// User is a registered account as held by the credential store.
type User struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfilePic   string    `json:"profilePic"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IdentitySummary is the public projection of a User returned to clients.
// It never carries the password hash.
type IdentitySummary struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summary projects u into its public form.
func (u *User) Summary() *IdentitySummary {
	return &IdentitySummary{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ProfileUpdate is the result of replacing a user's profile picture.
type ProfileUpdate struct {
	UserID     string `json:"userId"`
	ProfilePic string `json:"profilePic"`
}
