package vault

import "time"

// Organization is the tenant boundary. Every folder, file and grant belongs to exactly one.
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
