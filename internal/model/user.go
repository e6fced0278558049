package model

// Role classifies a user for audit visibility.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is a record of the external user directory. Only the fields the
// repository needs for name resolution are kept.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity is the acting user of a request, supplied by the auth collaborator.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
