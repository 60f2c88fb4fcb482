package models

import "time"

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LoginResult is returned by a successful admin login.
type LoginResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}
