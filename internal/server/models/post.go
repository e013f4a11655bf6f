package models

import "time"

type Post struct {
	ID       int64
	Title    string
	Content  string
	Created  time.Time
	AuthorID int64
}

// PostRow is a post joined with its author's username: the full field set.
type PostRow struct {
	Post
	AuthorName string
}

// LimitedPost is the reduced projection: no content and no author id.
type LimitedPost struct {
	ID         int64
	Title      string
	AuthorName string
}

// Limit strips the fields withheld from the reduced projection.
func (p PostRow) Limit() LimitedPost {
	return LimitedPost{ID: p.ID, Title: p.Title, AuthorName: p.AuthorName}
}

// PostScope selects which rows a post query may return.
type PostScope struct {
	all      bool
	authorID int64
}

// AllPosts scopes a query to every post.
func AllPosts() PostScope { return PostScope{all: true} }

// PostsByAuthor scopes a query to the posts owned by authorID.
func PostsByAuthor(authorID int64) PostScope { return PostScope{authorID: authorID} }

// All reports whether the scope covers every post.
func (s PostScope) All() bool { return s.all }

// AuthorID is the owner filter; meaningful only when All is false.
func (s PostScope) AuthorID() int64 { return s.authorID }
