package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The json tags are omitted on purpose: PasswordHash must never
// leave the server, so handlers respond with PublicUser instead.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the part of a user that is safe to return to clients.
type PublicUser struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}
