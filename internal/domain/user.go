package domain

import (
	"time"
)

// Gender values accepted at signup. The field is optional and stored as
// submitted; an empty string means the user did not provide one.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User represents a registered account.
//
// PasswordHash is a one-way bcrypt derivation and is never serialized.
// IsVerified starts false and only ever transitions to true.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
