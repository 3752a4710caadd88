// Package models contains data structures for the forum's domain models.
package models

import "time"

// Role is the authorization level of an identity.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Assignable reports whether the role can be stored on a user record.
// Guests are never persisted.
func (r Role) Assignable() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered forum member.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:254;not null" json:"email,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"size:16;not null;default:user;index" json:"role"`
	IsBanned  bool      `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the resolved identity performing a request. It is passed
// explicitly into every service call that needs authorization.
type Actor struct {
	UserID uint
	Role   Role
}

// GuestActor returns the anonymous identity.
func GuestActor() Actor {
	return Actor{Role: RoleGuest}
}

// ActorFor builds the actor for a stored user.
func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsGuest() bool {
	return a.UserID == 0 || a.Role == RoleGuest || a.Role == ""
}
