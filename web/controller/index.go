package controller

import (
	"errors"
	"net/http"
	"text/template"

	"github.com/invcheck/invcheck/backend"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web/service"
	"github.com/invcheck/invcheck/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IndexController handles the login page, login and logout.
type IndexController struct {
	BaseController
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup, opts Options) *IndexController {
	a := &IndexController{BaseController{opts: opts}}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/logout", a.logout)

	if a.opts.LoginLimiter != nil {
		g.POST("/login", a.opts.LoginLimiter, a.login)
	} else {
		g.POST("/login", a.login)
	}
}

// index shows the login page, or sends a logged-in user to the panel.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, "panel/")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

// login checks the credentials with the backend, stores the session and
// fetches the initial users and inventories.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}

	username, err := a.opts.Auth.Login(c.Request.Context(), form.Username, form.Password)
	safeUser := template.HTMLEscapeString(form.Username)
	switch {
	case errors.Is(err, service.ErrEmptyUsername):
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyUsername"))
		return
	case errors.Is(err, service.ErrEmptyPassword):
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.emptyPassword"))
		return
	case errors.Is(err, backend.ErrLoginRejected):
		logger.Warningf("wrong username or password for \"%s\", IP: \"%s\"", safeUser, c.ClientIP())
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.wrongUsernameOrPassword"))
		return
	case err != nil:
		logger.Warningf("login for \"%s\" failed: %v", safeUser, err)
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.loginError"))
		return
	}

	if err := session.SetMaxAge(c, a.opts.SessionMaxAge*60); err != nil {
		logger.Warning("Unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, username); err != nil {
		logger.Warning("Unable to save session: ", err)
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.loginError"))
		return
	}
	logger.Infof("%s logged in successfully, Ip Address: %s", safeUser, c.ClientIP())

	ws, err := a.workspace(c)
	if err != nil {
		logger.Warning("Unable to open workspace:", err)
	} else if err := ws.Load(c.Request.Context()); err != nil {
		logger.Warning("initial fetch failed:", err)
	}

	jsonMsg(c, I18nWeb(c, "pages.login.toasts.successLogin"), nil)
}

// logout clears the session and its workspace and returns to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if user := session.GetLoginUser(c); user != "" {
		logger.Infof("%s logged out successfully", user)
	}
	if id, err := session.GetWorkspaceID(c); err == nil {
		a.opts.Workspaces.Drop(id)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}
