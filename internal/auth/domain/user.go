package domain

import "time"

// Role is the access level assigned to a user account.
type Role string

const (
	RoleAdmin      Role = "ADMIN"      // platform administrator
	RoleStaff      Role = "STAFF"      // hospital staff
	RoleDispatcher Role = "DISPATCHER" // ambulance dispatcher
	RolePatient    Role = "PATIENT"    // patient account, the default
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleDispatcher, RolePatient:
		return true
	}
	return false
}

type User struct {
	ID           string
	Username     string
	Email        string
	PhoneNumber  string
	FirstName    string
	LastName     string
	PasswordHash string // argon2id encoded
	Role         Role
	Active       bool
	Verified     bool
	LastLogin    *time.Time // nil until the first completed login
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a user returned by the API. It never
// carries the password hash.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        Role   `json:"role"`
	Active      bool   `json:"active"`
	Verified    bool   `json:"verified"`
}

// Profile returns the API-safe projection of u.
func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Active:      u.Active,
		Verified:    u.Verified,
	}
}
