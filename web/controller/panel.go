package controller

import (
	"net/http"

	"github.com/invcheck/invcheck/backend"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web/entity"
	"github.com/invcheck/invcheck/web/service"

	"github.com/gin-gonic/gin"
)

// PanelController renders the tabbed panel and mounts the panel API.
type PanelController struct {
	BaseController

	inventoryController *InventoryController
	userController      *UserController
}

func NewPanelController(g *gin.RouterGroup, opts Options) *PanelController {
	a := &PanelController{BaseController: BaseController{opts: opts}}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/", a.index)

	api := g.Group("/api")
	api.POST("/tab/:name", a.switchTab)
	a.inventoryController = NewInventoryController(api, a.opts)
	a.userController = NewUserController(api, a.opts)
}

// index renders the panel. The first visit of a workspace fetches users and
// inventories; later visits render local state only.
func (a *PanelController) index(c *gin.Context) {
	ws, err := a.workspace(c)
	if err != nil {
		logger.Warning("Unable to open workspace:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var flash string
	if !ws.Loaded() {
		if err := ws.Load(c.Request.Context()); err != nil {
			flash = I18nWeb(c, "pages.inventories.toasts.loadFailed")
		}
	}
	if tab := c.Query("tab"); tab != "" {
		if err := ws.SwitchTab(service.Tab(tab)); err != nil {
			logger.Debugf("tab %q refused for %s: %v", tab, ws.Username(), err)
		}
	}

	html(c, "panel.html", "pages.panel.title", gin.H{
		"username":        ws.Username(),
		"admin":           ws.IsAdmin(),
		"tab":             string(ws.ActiveTab()),
		"rows":            ws.Rows(),
		"users":           ws.Users(),
		"statuses":        backend.CheckStatuses,
		"backendUp":       a.backendUp(),
		"allowUserCreate": a.opts.AllowUserCreate,
		"flash":           flash,
	})
}

func (a *PanelController) switchTab(c *gin.Context) {
	ws, err := a.workspace(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	if err := ws.SwitchTab(service.Tab(c.Param("name"))); err != nil {
		pureJsonMsg(c, http.StatusForbidden, false, err.Error())
		return
	}
	jsonObj(c, panelState(ws, a.backendUp()), nil)
}

func panelState(ws *service.Workspace, backendUp bool) entity.PanelState {
	return entity.PanelState{
		Username:  ws.Username(),
		Admin:     ws.IsAdmin(),
		Tab:       string(ws.ActiveTab()),
		BackendUp: backendUp,
		Rows:      toInventoryRows(ws.Rows()),
	}
}

func toInventoryRows(rows []service.Row) []entity.InventoryRow {
	out := make([]entity.InventoryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.InventoryRow{
			Inventory: r.Inventory,
			State:     r.State.String(),
			Editable:  r.Editable(),
			Draft:     r.Draft,
		})
	}
	return out
}
