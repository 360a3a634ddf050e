package users

import (
	"encoding/json"
	"time"
)

// User is a directory entry as returned to callers. It has no
// password field; the stored hash never leaves the store.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserInput carries the writable fields for both create and edit. Email and
// username are the lookup keys and must be present strings. Names of the wrong
// JSON type still decode; validateUser rejects them after the uniqueness checks.
type UserInput struct {
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	firstNameNotString bool
	lastNameNotString  bool
}

func (u *UserInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Email     string          `json:"email"`
		Username  string          `json:"username"`
		FirstName json.RawMessage `json:"firstName"`
		LastName  json.RawMessage `json:"lastName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = UserInput{Email: raw.Email, Username: raw.Username}
	u.FirstName, u.firstNameNotString = decodeName(raw.FirstName)
	u.LastName, u.lastNameNotString = decodeName(raw.LastName)
	return nil
}

// decodeName returns the string value of a name, or true when the value is
// present but not a JSON string. An absent name decodes as empty.
func decodeName(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", true
	}
	return name, false
}
