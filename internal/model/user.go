package model

import "time"

// User represents a row in the `users` table.  Authentication is a narrow
// collaborator of the booking engine, so the account model carries only what
// login and booking attribution need.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name captured at registration.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	CreatedAt    time.Time // users.created_at
}
