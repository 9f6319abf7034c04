package skillsprint

import "strings"

// UserRole is the platform role carried by a session
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// DefaultRole is used when neither the caller nor the token names a role
const DefaultRole = RoleUser

// DefaultUsername is used when neither the caller nor the token names a user
const DefaultUsername = "User"

// IsValid checks if the role is one the backend knows about
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin is an exact match, roles are case sensitive on the wire
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole parses user input into a UserRole, accepting any casing
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}
