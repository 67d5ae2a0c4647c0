package models

import "time"

// Roles
const (
	RoleAdmin       = "admin"
	RoleCashier     = "cashier"
	RoleSupervisor  = "supervisor"
	RoleDeliveryGuy = "delivery_guy"
)

type User struct {
	UserID       string    `json:"userid" bson:"userid"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         []string  `json:"role" bson:"role"`
	FirstName    string    `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty" bson:"last_name,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	LastLogin    time.Time `json:"last_login" bson:"last_login"`
}

// FullName falls back to the username when names are unset.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Role {
		if r == role {
			return true
		}
	}
	return false
}

// CanProcessSales mirrors the permission gate on every sale endpoint.
func (u *User) CanProcessSales() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleCashier) || u.HasRole(RoleSupervisor)
}

// UserSettings stores server-side per-user preferences.
type UserSettings struct {
	UserID        string `json:"userID,omitempty" bson:"userID"`
	Theme         string `json:"theme" bson:"theme"`
	Notifications bool   `json:"notifications" bson:"notifications"`
	Language      string `json:"language" bson:"language"`
	TimeZone      string `json:"time_zone" bson:"time_zone"`
}
