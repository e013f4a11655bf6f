// Package policy maps an identity's role, plus an optional search term, to
// the rows and fields that identity may see. It is a pure function of its
// inputs and has no storage dependencies.
package policy

import (
	"strings"

	"github.com/dmitrijs2005/roleboard/internal/server/models"
)

// Projection names the field set exposed to a role.
type Projection int

const (
	// Full exposes id, title, content, author id and author username.
	Full Projection = iota
	// Limited exposes id, title and author username only.
	Limited
)

func (p Projection) String() string {
	if p == Limited {
		return "limited"
	}
	return "full"
}

// Scope describes one dashboard or search query.
type Scope struct {
	// Role is the role the scope was derived for. An unrecognized role is
	// kept as-is so callers can report it.
	Role       models.Role
	Rows       models.PostScope
	Projection Projection
	// Query is the audit tag for the query, e.g. "all_posts_full".
	Query string
	// Anomalous is set when the role was not recognized and the most
	// restrictive scope was applied instead.
	Anomalous bool

	searching bool
	term      string
}

// For returns the dashboard scope for id.
//
//	admin     → all posts, full fields
//	moderator → all posts, limited fields
//	user      → own posts, full fields
//
// Any other role gets the user scope with Anomalous set.
func For(id models.Identity) Scope {
	s := Scope{Role: id.Role}

	switch id.Role {
	case models.RoleAdmin:
		s.Rows = models.AllPosts()
		s.Projection = Full
		s.Query = "all_posts_full"
	case models.RoleModerator:
		s.Rows = models.AllPosts()
		s.Projection = Limited
		s.Query = "all_posts_limited"
	case models.RoleUser:
		s.Rows = models.PostsByAuthor(id.ID)
		s.Projection = Full
		s.Query = "user_posts"
	default:
		s.Rows = models.PostsByAuthor(id.ID)
		s.Projection = Full
		s.Query = "user_posts"
		s.Anomalous = true
	}

	return s
}

// Search returns the scope for id further filtered by a case-insensitive
// substring match of term against title or content.
func Search(id models.Identity, term string) Scope {
	s := For(id)
	s.searching = true
	s.term = term

	switch {
	case s.Rows.All() && s.Projection == Full:
		s.Query = "search_all_full"
	case s.Rows.All():
		s.Query = "search_all_limited"
	default:
		s.Query = "search_user_posts"
	}

	return s
}

// Searching reports whether the scope carries a search term.
func (s Scope) Searching() bool { return s.searching }

// Term is the raw search term as entered.
func (s Scope) Term() string { return s.term }

// Pattern is the LIKE pattern for the search term: the term with LIKE
// metacharacters escaped by a backslash, wrapped in %...%. It must only ever
// be passed to the store as a bound argument.
func (s Scope) Pattern() string {
	return "%" + EscapeLike(s.term) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes \, % and _ so s matches literally inside a LIKE pattern
// that uses backslash as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
