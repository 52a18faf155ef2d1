package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web/service"

	"github.com/gin-gonic/gin"
)

// DraftForm is one field change of the row being edited.
type DraftForm struct {
	Field string `json:"field" form:"field"`
	Value string `json:"value" form:"value"`
}

// InventoryController serves the row edit/confirm API of the inventories tab.
type InventoryController struct {
	BaseController
}

func NewInventoryController(g *gin.RouterGroup, opts Options) *InventoryController {
	a := &InventoryController{BaseController{opts: opts}}
	a.initRouter(g)
	return a
}

func (a *InventoryController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/inventories")

	g.GET("", a.list)
	g.POST("/reload", a.reload)
	g.GET("/export/view", a.exportView)
	g.POST("/:id/edit", a.startEditing)
	g.POST("/:id/draft", a.draft)
	g.POST("/:id/save", a.save)
	g.POST("/:id/confirm", a.confirm)
}

func (a *InventoryController) list(c *gin.Context) {
	ws, err := a.workspace(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonObj(c, panelState(ws, a.backendUp()), nil)
}

func (a *InventoryController) reload(c *gin.Context) {
	ws, err := a.workspace(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	if err := ws.Load(c.Request.Context()); err != nil {
		jsonMsgObj(c, I18nWeb(c, "pages.inventories.toasts.loadFailed"), panelState(ws, a.backendUp()), err)
		return
	}
	jsonObj(c, panelState(ws, a.backendUp()), nil)
}

func (a *InventoryController) startEditing(c *gin.Context) {
	ws, id, ok := a.row(c)
	if !ok {
		return
	}
	if err := ws.StartEditing(id); err != nil {
		a.rowError(c, err)
		return
	}
	jsonObj(c, panelState(ws, a.backendUp()), nil)
}

func (a *InventoryController) draft(c *gin.Context) {
	ws, id, ok := a.row(c)
	if !ok {
		return
	}
	var form DraftForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, "pages.inventories.toasts.invalidField"))
		return
	}
	if err := ws.SetField(id, form.Field, form.Value); err != nil {
		a.rowError(c, err)
		return
	}
	jsonMsg(c, "", nil)
}

// save commits the draft. A field sent along with the request is applied to
// the draft first, so the saved value is the one the browser shows. The local
// row keeps the new values even when the backend call fails, unless rollback
// is configured.
func (a *InventoryController) save(c *gin.Context) {
	ws, id, ok := a.row(c)
	if !ok {
		return
	}
	var form DraftForm
	if err := c.ShouldBind(&form); err == nil && form.Field != "" {
		if err := ws.SetField(id, form.Field, form.Value); err != nil {
			a.rowError(c, err)
			return
		}
	}
	err := ws.Commit(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotEditing) {
		a.rowError(c, err)
		return
	}
	msg := I18nWeb(c, "pages.inventories.toasts.saved")
	if err != nil {
		msg = I18nWeb(c, "pages.inventories.toasts.saveFailed")
	}
	jsonMsgObj(c, msg, panelState(ws, a.backendUp()), err)
}

func (a *InventoryController) confirm(c *gin.Context) {
	ws, id, ok := a.row(c)
	if !ok {
		return
	}
	err := ws.Confirm(c.Request.Context(), id)
	if errors.Is(err, service.ErrRowLocked) || errors.Is(err, service.ErrRowNotFound) {
		a.rowError(c, err)
		return
	}
	msg := I18nWeb(c, "pages.inventories.toasts.confirmed")
	if err != nil {
		msg = I18nWeb(c, "pages.inventories.toasts.confirmFailed")
	}
	jsonMsgObj(c, msg, panelState(ws, a.backendUp()), err)
}

// exportView downloads the rows currently shown in this workspace as xlsx.
func (a *InventoryController) exportView(c *gin.Context) {
	ws, err := a.workspace(c)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="inventories.xlsx"`)
	if err := service.WriteInventoriesXLSX(c.Writer, ws.Inventories(), ws.IsConfirmed); err != nil {
		logger.Warning("export visible rows failed:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// row resolves the workspace and the :id parameter, answering the request
// itself when either is invalid.
func (a *InventoryController) row(c *gin.Context) (*service.Workspace, int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.inventories.toasts.rowNotFound"))
		return nil, 0, false
	}
	ws, err := a.workspace(c)
	if err != nil {
		jsonMsg(c, "", err)
		return nil, 0, false
	}
	return ws, id, true
}

func (a *InventoryController) rowError(c *gin.Context, err error) {
	key := "pages.inventories.toasts.invalidField"
	switch {
	case errors.Is(err, service.ErrRowLocked):
		key = "pages.inventories.toasts.rowLocked"
	case errors.Is(err, service.ErrRowNotFound):
		key = "pages.inventories.toasts.rowNotFound"
	case errors.Is(err, service.ErrNotEditing):
		key = "pages.inventories.toasts.notEditing"
	}
	pureJsonMsg(c, http.StatusOK, false, I18nWeb(c, key))
}
