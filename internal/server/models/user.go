// Package models defines server-side data models persisted in the database.
package models

// User is a registered account. PasswordHash holds a bcrypt digest and is
// never serialized.
type User struct {
	ID           int64
	FullName     string
	UserName     string
	Email        string
	PasswordHash []byte `json:"-"`
	Role         Role
}
