// Package models holds the server-side records stored in PostgreSQL.
package models

import "time"

type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
