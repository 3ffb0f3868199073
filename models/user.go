package models

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// User is the single back-office operator configured from the environment. It is never stored.
type User struct {
	Username string `json:"username"`
	Password []byte `json:"-"`
}

func (user *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return nil
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

// Matches checks both credentials; the username compare is constant time.
func (user *User) Matches(username, password string) bool {
	if len(user.Password) == 0 {
		return false
	}
	sameName := subtle.ConstantTimeCompare([]byte(user.Username), []byte(username)) == 1
	return user.ComparePassword(password) == nil && sameName
}
