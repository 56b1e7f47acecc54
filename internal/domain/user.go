package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}

// IsAdmin reports whether the user may see admin navigation. Route guards
// check the role again on the server.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
