package controller

import (
	"net/http"
	"strconv"

	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web/middleware"

	"github.com/gin-gonic/gin"
)

// CreateUserForm is the admin's new-user request.
type CreateUserForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// UserController serves the administrator-only parts of the panel.
type UserController struct {
	BaseController
}

func NewUserController(g *gin.RouterGroup, opts Options) *UserController {
	a := &UserController{BaseController{opts: opts}}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("", middleware.AdminRequired(a.opts.AdminUser))

	g.GET("/users", a.list)
	g.POST("/users", a.create)
	g.GET("/inventories/export/excel", a.exportExcel)
	g.GET("/logs/:count", a.logs)
}

// list returns the users fetched into the workspace with passwords masked.
func (a *UserController) list(c *gin.Context) {
	ws, err := a.workspace(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	users := ws.Users()
	for i := range users {
		users[i].Password = "***"
	}
	jsonObj(c, users, nil)
}

func (a *UserController) create(c *gin.Context) {
	if !a.opts.AllowUserCreate || a.opts.Users == nil {
		pureJsonMsg(c, http.StatusForbidden, false, I18nWeb(c, "pages.inventories.toasts.userCreateDisabled"))
		return
	}
	var form CreateUserForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	user, err := a.opts.Users.CreateUser(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.inventories.toasts.userCreateFailed"), err)
		return
	}
	user.Password = "***"
	jsonMsgObj(c, I18nWeb(c, "pages.inventories.toasts.userCreated"), user, nil)
}

// exportExcel streams the backend's spreadsheet of every record to the browser.
func (a *UserController) exportExcel(c *gin.Context) {
	if a.opts.Users == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	dl, err := a.opts.Users.ExportExcel(c.Request.Context())
	if err != nil {
		logger.Warning("export excel failed:", err)
		pureJsonMsg(c, http.StatusBadGateway, false, I18nWeb(c, "pages.inventories.toasts.exportFailed"))
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := dl.ContentDisposition
	if disposition == "" {
		disposition = `attachment; filename="inventories.xlsx"`
	}
	c.DataFromReader(http.StatusOK, dl.ContentLength, contentType, dl.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (a *UserController) logs(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil || count <= 0 {
		count = 100
	}
	jsonObj(c, logger.GetLogs(count, c.DefaultQuery("level", "INFO")), nil)
}
