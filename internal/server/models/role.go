package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/roleboard/internal/common"
)

// Role is the access level of a user. Only the three constants below are
// valid; anything else read from storage is an anomaly.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role, most restrictive first.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts s to a Role. An empty string yields RoleUser, the
// column default. Unknown values return common.ErrUnrecognizedRole.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleUser, nil
	}
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", common.ErrUnrecognizedRole, s)
	}
	return r, nil
}
