package models

import "time"

type User struct {
	ID           int       `json:"id"`
	PersonID     int       `json:"person_id"`
	StoreID      int       `json:"store_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
