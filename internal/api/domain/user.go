package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2 encoded
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
