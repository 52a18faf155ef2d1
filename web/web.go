// Package web provides the invcheck web server: routing, embedded templates
// and assets, sessions and the backend health job.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/invcheck/invcheck/backend"
	"github.com/invcheck/invcheck/caching"
	"github.com/invcheck/invcheck/config"
	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/util/common"
	"github.com/invcheck/invcheck/web/controller"
	"github.com/invcheck/invcheck/web/job"
	"github.com/invcheck/invcheck/web/locale"
	"github.com/invcheck/invcheck/web/middleware"
	"github.com/invcheck/invcheck/web/service"
	"github.com/invcheck/invcheck/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

// wrapAssetsFileInfo pins ModTime to process start so embedded assets get a
// usable Last-Modified header.
type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the invcheck web front end.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	client     *backend.Client
	cache      *caching.Cache
	workspaces *service.WorkspaceStore
	backendJob *job.CheckBackendJob

	cron *cron.Cron
}

// NewServer creates a server talking to the backend configured in the environment.
func NewServer() *Server {
	client := backend.NewClient(config.GetBackendURL(), config.GetLoginMarker(), config.GetBackendTimeout())
	return &Server{
		client:     client,
		backendJob: job.NewCheckBackendJob(client, config.GetBackendTimeout()),
	}
}

// getHtmlTemplate parses the embedded page templates.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(htmlFS, "html/*.html")
}

// sessionSecret returns the configured cookie key, or a random one that
// invalidates sessions on restart.
func sessionSecret() []byte {
	if secret := config.GetSessionSecret(); secret != "" {
		return []byte(secret)
	}
	logger.Warning("INVCHECK_SESSION_SECRET is not set, sessions will not survive a restart")
	return []byte(uuid.NewString() + uuid.NewString())
}

// initRouter builds the gin engine with middleware, templates, static assets
// and controllers.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	if webDomain := config.GetWebDomain(); webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	basePath := config.GetBasePath()
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "panel/api/"}),
	))

	store := cookie.NewStore(sessionSecret())
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})
	engine.Use(locale.LocalizerMiddleware())

	funcMap := template.FuncMap{"i18n": locale.I18n}
	engine.SetFuncMap(funcMap)

	if config.IsDebug() {
		engine.LoadHTMLGlob("web/html/*.html")
		engine.StaticFS(basePath+"assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}

	opts := controller.Options{
		Auth:            service.NewAuthService(s.client),
		Workspaces:      s.workspaces,
		Users:           s.client,
		AdminUser:       config.GetAdminUser(),
		AllowUserCreate: config.IsUserCreateAllowed(),
		SessionMaxAge:   config.GetSessionMaxAge(),
		LoginLimiter:    middleware.RateLimitMiddleware(s.cache, middleware.DefaultRateLimitConfig(config.GetLoginRate())),
		BackendUp:       s.backendJob.IsUp,
	}

	g := engine.Group(basePath)
	controller.NewIndexController(g, opts)
	controller.NewPanelController(g, opts)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// initServices loads translations and creates the cache and workspace store.
func (s *Server) initServices() error {
	if err := locale.InitLocalizer(i18nFS); err != nil {
		return err
	}

	ttl := time.Duration(config.GetSessionMaxAge()) * time.Minute
	s.cache = caching.NewCache()
	if err := s.cache.Init(ttl, 10*time.Minute); err != nil {
		return err
	}
	s.workspaces = service.NewWorkspaceStore(s.cache, s.client, config.GetAdminUser(), config.IsRollbackOnFailure(), ttl)
	return nil
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@every 30s", s.backendJob); err != nil {
		logger.Warning("add backend check job failed:", err)
	}
	go s.backendJob.Run()
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err = s.initServices(); err != nil {
		return err
	}

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr(), "backend", s.client.BaseURL())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()

	return nil
}

// Stop shuts down the HTTP server, the cron scheduler and the cache.
func (s *Server) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.cache != nil {
		_ = s.cache.Flush()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	} else if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

// Addr returns the address the server listens on, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
