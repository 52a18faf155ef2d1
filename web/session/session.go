// Package session keeps the login flag, the username and the workspace id in
// the browser's signed session cookie.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "invcheck"

	loggedInKey  = "isLoggedIn"
	usernameKey  = "username"
	workspaceKey = "workspace"
)

// SetLoginUser marks the session as logged in for username.
func SetLoginUser(c *gin.Context, username string) error {
	s := sessions.Default(c)
	s.Set(loggedInKey, "true")
	s.Set(usernameKey, username)
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// GetLoginUser returns the logged-in username, or "" when the session is not
// logged in.
func GetLoginUser(c *gin.Context) string {
	s := sessions.Default(c)
	if flag, _ := s.Get(loggedInKey).(string); flag != "true" {
		return ""
	}
	username, _ := s.Get(usernameKey).(string)
	return username
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != ""
}

// GetWorkspaceID returns the id of the server-side workspace bound to this
// session, allocating one on first use.
func GetWorkspaceID(c *gin.Context) (string, error) {
	s := sessions.Default(c)
	if id, ok := s.Get(workspaceKey).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	s.Set(workspaceKey, id)
	return id, s.Save()
}

// ClearSession drops every session key and expires the cookie.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(loggedInKey)
	s.Delete(usernameKey)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
