package domain

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is a journal account. Passwords are stored as bcrypt hashes only;
// no recoverable secret ever leaves the storage layer.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	PasswordHash      string    `json:"-"`
	Role              Role      `json:"role"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	InitialBalance    float64   `json:"initialBalance"`
	UseInitialBalance bool      `json:"useInitialBalance"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Invite is an admin-created signup record, consumed on first login
// with the invited email.
type Invite struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NavItems returns the navigation surface visible to the role.
// Admins get user management instead of the add-trade form: the admin
// account is an oversight role, not a trading participant.
func NavItems(role Role) []string {
	if role == RoleAdmin {
		return []string{"dashboard", "mindset", "logs", "settings", "user-management"}
	}
	return []string{"dashboard", "mindset", "logs", "add-trade", "settings"}
}
