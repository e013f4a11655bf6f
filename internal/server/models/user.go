package models

// User is an account row. Password holds the stored credential secret,
// either as plain text or a bcrypt hash depending on the configured scheme.
type User struct {
	ID       int64
	UserName string
	Email    string
	Password string
	Role     Role
}

// Identity is the resolved authenticated principal attached to a request.
type Identity struct {
	ID       int64
	UserName string
	Role     Role
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, UserName: u.UserName, Role: u.Role}
}
