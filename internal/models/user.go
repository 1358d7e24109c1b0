package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the access level attached to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleAdmin}

// ParseRole validates a role coming from a request body or a storage row.
// Matching is case-insensitive so rows written as "admin" still map to RoleAdmin.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("invalid role: %q", value)
	}
}

// User is a directory record.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"`
	Role         Role           `json:"role"`
	Email        string         `json:"email,omitempty"`
	Name         string         `json:"name,omitempty"`
	Address      map[string]any `json:"address,omitempty"`
	Comment      string         `json:"comment,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasAnyRole reports whether the user's role is one of roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Sanitized returns a copy without the password hash, safe to attach to a
// request or return to a caller.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	if u.Address != nil {
		clone.Address = make(map[string]any, len(u.Address))
		for k, v := range u.Address {
			clone.Address[k] = v
		}
	}
	return &clone
}

// UserPatch carries a partial update. Nil fields are left untouched.
type UserPatch struct {
	Email        *string
	Name         *string
	Address      map[string]any
	Comment      *string
	Role         *Role
	PasswordHash *string
}

// IsEmpty reports whether the patch changes nothing.
func (p *UserPatch) IsEmpty() bool {
	return p == nil || (p.Email == nil && p.Name == nil && p.Address == nil &&
		p.Comment == nil && p.Role == nil && p.PasswordHash == nil)
}

// Apply copies the set fields onto u.
func (p *UserPatch) Apply(u *User) {
	if p == nil {
		return
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.Comment != nil {
		u.Comment = *p.Comment
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}
