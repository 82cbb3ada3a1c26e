package models

import "time"

// Operator is a named user who scans and updates specimens. Passwords are
// optional; shared bench terminals often run without them.
type Operator struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasPassword reports whether a password is set for this operator.
func (o *Operator) HasPassword() bool {
	return o.PasswordHash != ""
}
