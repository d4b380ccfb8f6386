package models

// Role is the access-level tag of a user. Only the constants below are valid.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// ParseRole converts raw input into a Role, rejecting anything that is not
// one of the known roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleFaculty:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string {
	return string(r)
}
