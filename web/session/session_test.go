package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(CookieName, cookie.NewStore([]byte("test-secret"))))
	r.GET("/login/:name", func(c *gin.Context) {
		if err := SetLoginUser(c, c.Param("name")); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, "%v|%s", IsLogin(c), GetLoginUser(c))
	})
	r.GET("/workspace", func(c *gin.Context) {
		id, err := GetWorkspaceID(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	r.GET("/logout", func(c *gin.Context) {
		_ = ClearSession(c)
		c.Status(http.StatusOK)
	})
	return r
}

func do(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	r := newEngine()

	w := do(r, "/whoami", nil)
	assert.Equal(t, "false|", w.Body.String())

	w = do(r, "/login/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(r, "/whoami", cookies)
	assert.Equal(t, "true|bob", w.Body.String())

	w = do(r, "/logout", cookies)
	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.True(t, cleared[0].MaxAge < 0)

	w = do(r, "/whoami", cleared)
	assert.Equal(t, "false|", w.Body.String())
}

func TestWorkspaceIDIsStable(t *testing.T) {
	r := newEngine()

	w := do(r, "/workspace", nil)
	first := w.Body.String()
	assert.Len(t, first, 36)

	w = do(r, "/workspace", w.Result().Cookies())
	assert.Equal(t, first, w.Body.String())
}
