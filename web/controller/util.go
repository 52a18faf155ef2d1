package controller

import (
	"net/http"

	"github.com/invcheck/invcheck/config"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/web/entity"
	"github.com/invcheck/invcheck/web/locale"

	"github.com/gin-gonic/gin"
)

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj answers with the entity.Msg envelope. Backend failures still use
// status 200; the browser reads success.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{Success: err == nil, Msg: msg, Obj: obj}
	if err != nil {
		m.Msg = msg + " (" + err.Error() + ")"
		logger.Warningf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(http.StatusOK, m)
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{Success: success, Msg: msg})
}

// html renders a page template with the localizer, base path and version
// every page needs.
func html(c *gin.Context, name string, title string, data gin.H) {
	page := gin.H{
		"title":     title,
		"loc":       locale.FromContext(c),
		"base_path": c.GetString("base_path"),
		"cur_ver":   config.GetVersion(),
	}
	for key, value := range data {
		page[key] = value
	}
	c.HTML(http.StatusOK, name, page)
}

// isAjax reports whether the request came from the panel's fetch calls.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
