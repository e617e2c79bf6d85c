package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Role is the permission level of a user inside a workgroup. The order is
// significant: a higher role passes every gate of the lower ones.
type Role int

const (
	RoleView Role = iota
	RoleEditor
	RoleController
	RoleValidator
	RolePublisher
)

var roleNames = [...]string{
	RoleView:       "View",
	RoleEditor:     "Editor",
	RoleController: "Controller",
	RoleValidator:  "Validator",
	RolePublisher:  "Publisher",
}

func (r Role) Valid() bool {
	return r >= RoleView && r <= RolePublisher
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole is case-sensitive, like every other name lookup of the API.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return RoleView, fmt.Errorf("unknown role %q", name)
}

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	// admins act as Publisher in every workgroup
	IsAdmin bool `gorm:"not null;default:false" json:"isAdmin"`
}
