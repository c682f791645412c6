package models

import "time"

// UserDB represents a user record in the database
type UserDB struct {
	Username    string     `json:"username" db:"username"`           // Unique username, primary key
	Password    string     `json:"-" db:"password"`                  // Bcrypt hash, never exposed
	FirstName   string     `json:"first_name" db:"first_name"`       // First name
	LastName    string     `json:"last_name" db:"last_name"`         // Last name
	Phone       string     `json:"phone" db:"phone"`                 // Phone number
	JoinAt      time.Time  `json:"join_at" db:"join_at"`             // Registration timestamp
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"` // Updated on each successful login
}

// UserSummary is the listing view of a user: no phone, no timestamps.
type UserSummary struct {
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

// UserProfile is the full public view of a user.
type UserProfile struct {
	Username    string     `json:"username" db:"username"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	Phone       string     `json:"phone" db:"phone"`
	JoinAt      time.Time  `json:"join_at" db:"join_at"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
}

// Profile returns the full public view of the user record.
func (u *UserDB) Profile() UserProfile {
	return UserProfile{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinAt:      u.JoinAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// Summary returns the listing view of the user record.
func (u *UserDB) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
