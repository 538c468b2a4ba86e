package model

import "time"

// User is the signed-in account as reported by the identity provider.
type User struct {
	ID           string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
	SignedInAt   time.Time
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

func (u *User) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && now.After(u.ExpiresAt)
}
