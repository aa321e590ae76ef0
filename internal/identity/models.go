package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal kinds the approval chain dispatches on.
type Role string

const (
	RoleClerk   Role = "CLERK"
	RoleManager Role = "MANAGER"
	RoleED      Role = "ED"
	RoleAdmin   Role = "ADMIN"
)

// User is an account that can authenticate and act on requests.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"not null" json:"role"`
	// ManagerID is the approval manager assigned to this user, when any.
	ManagerID *uuid.UUID `gorm:"type:uuid" json:"manager_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Actor is the resolved view of a principal handed to the workflow engine:
// identity, role and assigned manager, nothing more.
type Actor struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
}

func (u *User) actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role, ManagerID: u.ManagerID}
}
