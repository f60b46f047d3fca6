package user

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleWorker   Role = "WORKER"
	RoleManager  Role = "MANAGER"
	RoleDirector Role = "DIRECTOR"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleWorker, RoleManager, RoleDirector:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	CreatedAt         time.Time `json:"created_at"`
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name"`
	PasswordHash      string    `json:"-"`
	Role              Role      `json:"role"`
	AssignedManagerID *string   `json:"assigned_manager_id,omitempty"`
	Active            bool      `json:"active"`
}
