package models

import (
	"encoding/json"
	"fmt"
)

// User is the profile of an authenticated account.
type User struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DecodeUser decodes a stored profile document for the given user id.
func DecodeUser(id string, data []byte) (User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("decoding user %s: %w", id, err)
	}
	u.ID = id
	return u, nil
}

// Encode returns the stored representation of the profile.
func (u User) Encode() ([]byte, error) {
	return json.Marshal(u)
}
