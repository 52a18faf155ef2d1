package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"translation/translate.en-US.toml": {Data: []byte("\"pages.login.title\" = \"Login\"\n\"welcome\" = \"Welcome {{ .Name }}\"\n")},
	"translation/translate.zh-CN.toml": {Data: []byte("\"pages.login.title\" = \"登录\"\n")},
}

func TestI18n(t *testing.T) {
	require.NoError(t, InitLocalizer(testFS))

	assert.Equal(t, "Login", I18n(NewLocalizer("en-US"), "pages.login.title"))
	assert.Equal(t, "登录", I18n(NewLocalizer("zh-CN"), "pages.login.title"))
	assert.Equal(t, "Login", I18n(NewLocalizer("fr-FR"), "pages.login.title"))
	assert.Equal(t, "Welcome bob", I18n(NewLocalizer("en-US"), "welcome", "Name==bob"))
	assert.Equal(t, "missing.key", I18n(NewLocalizer("en-US"), "missing.key"))
	assert.Equal(t, "any", I18n(nil, "any"))
}

func TestLocalizerMiddleware(t *testing.T) {
	require.NoError(t, InitLocalizer(testFS))
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(LocalizerMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, I18n(FromContext(c), "pages.login.title"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "登录", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh-CN")
	req.AddCookie(&http.Cookie{Name: "lang", Value: "en-US"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Login", w.Body.String())
}
