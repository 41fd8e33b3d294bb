package models

import "time"

// PasswordResetToken stores only the SHA-256 of the token sent by e-mail.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsValid reports whether the token can still authorize a password change.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.IsUsed() && !t.IsExpired(now)
}
