// Package controller provides the HTTP handlers of the invcheck panel: the
// login view, the panel shell and the JSON API the panel calls for row actions.
package controller

import (
	"context"
	"net/http"

	"github.com/invcheck/invcheck/backend"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web/locale"
	"github.com/invcheck/invcheck/web/service"
	"github.com/invcheck/invcheck/web/session"

	"github.com/gin-gonic/gin"
)

// UserBackend is the part of the backend client the admin views need.
type UserBackend interface {
	CreateUser(ctx context.Context, username, password string) (*backend.User, error)
	ExportExcel(ctx context.Context) (*backend.Download, error)
}

// Options carries the collaborators shared by all controllers.
type Options struct {
	Auth       *service.AuthService
	Workspaces *service.WorkspaceStore
	Users      UserBackend

	AdminUser       string
	AllowUserCreate bool
	SessionMaxAge   int // minutes

	// LoginLimiter guards POST /login when set.
	LoginLimiter gin.HandlerFunc
	// BackendUp reports the last known backend health; nil means always up.
	BackendUp func() bool
}

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct {
	opts Options
}

// checkLogin is a middleware that verifies user authentication and handles unauthorized access.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.toasts.loginAgain"))
		} else {
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// workspace returns the panel state bound to the caller's session.
func (a *BaseController) workspace(c *gin.Context) (*service.Workspace, error) {
	id, err := session.GetWorkspaceID(c)
	if err != nil {
		return nil, err
	}
	return a.opts.Workspaces.Open(id, session.GetLoginUser(c)), nil
}

func (a *BaseController) backendUp() bool {
	if a.opts.BackendUp == nil {
		return true
	}
	return a.opts.BackendUp()
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	loc := locale.FromContext(c)
	if loc == nil {
		logger.Debug("no localizer in gin context")
	}
	return locale.I18n(loc, name, params...)
}
