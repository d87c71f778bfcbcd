package models

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const Admin = "Admin"

const passwordCost = 8

var ErrInvalidCredentials = errors.New("invalid username or password")

type AdminCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username string    `json:"username"`
	Kind     string    `json:"kind"`
	Expiry   time.Time `json:"expiry"`
}

func GenerateHash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if hashErr != nil {
		return "", fmt.Errorf("error hashing password %w", hashErr)
	}

	return string(hashedPassword), nil
}

// CheckCredentials compares creds against the configured admin account.
func CheckCredentials(creds AdminCredentials, username, passwordHash string) error {
	if username == "" || passwordHash == "" {
		return errors.New("admin account is not configured")
	}
	if creds.Username != username {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(creds.Password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
