// Package models defines the records persisted by the finance tracker.
package models

import "time"

type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	// TokenVersion only ever grows; sessions carrying an older value are dead.
	TokenVersion int
	// EmailEncrypted and EmailHash are empty for accounts without an e-mail.
	EmailEncrypted string
	EmailHash      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserSummary is what other users (and the user themselves) get to see.
type UserSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}
