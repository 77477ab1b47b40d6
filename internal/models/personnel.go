package models

import (
	"fmt"
	"strings"
	"time"
)

// PersonnelRole enumerates the staff roles known to the system.
type PersonnelRole string

const (
	RoleAdministrative PersonnelRole = "ADMINISTRATIVE"
	RoleInstructor     PersonnelRole = "INSTRUCTOR"
	RoleDirector       PersonnelRole = "DIRECTOR"
)

// ParsePersonnelRole maps a free-form role string onto the enum.
func ParsePersonnelRole(raw string) (PersonnelRole, error) {
	switch PersonnelRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdministrative:
		return RoleAdministrative, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleDirector:
		return RoleDirector, nil
	default:
		return "", fmt.Errorf("unknown personnel role %q", raw)
	}
}

// CodePrefix returns the matricule prefix used when generating personnel codes.
func (r PersonnelRole) CodePrefix() string {
	switch r {
	case RoleInstructor:
		return "INS"
	case RoleDirector:
		return "DIR"
	default:
		return "ADM"
	}
}

// Personnel is a staff member. The code is generated at creation time and
// immutable afterwards.
type Personnel struct {
	Code         string        `db:"code" json:"code"`
	Name         string        `db:"name" json:"name"`
	Login        string        `db:"login" json:"login"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Sex          string        `db:"sex" json:"sex"`
	Role         PersonnelRole `db:"role" json:"role"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// PersonnelRef is the compact projection embedded in session responses.
type PersonnelRef struct {
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}
