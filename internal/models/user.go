package models

// User is the authenticated caller resolved from a session token.
type User struct {
	ID    string
	Email string
	Name  string
}
