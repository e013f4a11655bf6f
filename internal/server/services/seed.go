package services

import "github.com/dmitrijs2005/roleboard/internal/server/models"

type seedUser struct {
	UserName string
	Email    string
	Secret   string
	Role     models.Role
}

type seedPost struct {
	Title   string
	Content string
	Author  string
}

var seedUsers = []seedUser{
	{UserName: "admin", Email: "admin@example.com", Secret: "admin123", Role: models.RoleAdmin},
	{UserName: "mod1", Email: "mod1@example.com", Secret: "mod123", Role: models.RoleModerator},
	{UserName: "user1", Email: "user1@example.com", Secret: "user123", Role: models.RoleUser},
	{UserName: "user2", Email: "user2@example.com", Secret: "user456", Role: models.RoleUser},
}

var seedPosts = []seedPost{
	{Title: "Welcome Post", Content: "This is the first post.", Author: "admin"},
	{Title: "Moderator Update", Content: "Moderator insights here.", Author: "mod1"},
	{Title: "User Thoughts", Content: "User1 shares ideas.", Author: "user1"},
	{Title: "Another User Post", Content: "User2 contributes.", Author: "user2"},
}
