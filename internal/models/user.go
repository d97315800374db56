package models

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID string
}
