package models

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleMember  = "member"
	RoleManager = "manager"
)

// User is the model for the 'users' table. A user who records sales is a member.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var commonPasswords = map[string]bool{
	"password":  true,
	"123456":    true,
	"qwerty":    true,
	"12345678":  true,
	"password1": true,
}

// Password policy errors.
var (
	ErrPasswordTooShort = errors.New("your password must contain at least 8 characters")
	ErrPasswordNumeric  = errors.New("your password cannot be entirely numeric")
	ErrPasswordPersonal = errors.New("your password cannot be too similar to your other personal information")
	ErrPasswordCommon   = errors.New("your password cannot be a commonly used password")
)

// ValidatePassword checks a candidate password against the registration policy.
// personal holds the username, email and names the password must not contain.
func ValidatePassword(password string, personal ...string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		return ErrPasswordNumeric
	}
	lower := strings.ToLower(password)
	for _, info := range personal {
		if info != "" && strings.Contains(lower, strings.ToLower(info)) {
			return ErrPasswordPersonal
		}
	}
	if commonPasswords[lower] {
		return ErrPasswordCommon
	}
	return nil
}
