package models

import "time"

// User is a field agent or administrator. Account provisioning and login
// live in a separate identity service; this backend only needs enough to
// attribute settlements and validate tokens.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"` // "agent" or "admin"
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
