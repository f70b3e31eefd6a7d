package model

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}
