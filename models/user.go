package models

// User is a stored credential record. PasswordHash only ever holds the
// output of the password hasher, never the plaintext.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Not exposed in API responses
}
