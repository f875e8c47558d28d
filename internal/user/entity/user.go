package entity

import "time"

// User is an account row. PasswordHash never leaves the user service.
type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Principal is the public identity of an authenticated user.
type Principal struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Principal projects u onto its public fields.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}
