// Package config provides environment-driven configuration for the invcheck
// front end, including backend location, session and logging settings.
package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const (
	defaultBackendURL  = "http://localhost:8081"
	defaultAdminUser   = "45420191"
	defaultLoginMarker = "登录成功"
	defaultPort        = 8080
)

// LoadEnv reads KEY=VALUE pairs from the given files (".env" when none are given)
// into the process environment. Variables already set are left untouched and
// missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("INVCHECK_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("INVCHECK_DEBUG") == "true"
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("INVCHECK_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("INVCHECK_LISTEN")
}

func GetPort() int {
	return getInt("INVCHECK_PORT", defaultPort)
}

// GetBasePath returns the URL prefix all routes are mounted under, always
// starting and ending with a slash.
func GetBasePath() string {
	basePath := os.Getenv("INVCHECK_BASE_PATH")
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

func GetWebDomain() string {
	return os.Getenv("INVCHECK_DOMAIN")
}

// GetBackendURL returns the base URL of the inventory backend without a trailing slash.
func GetBackendURL() string {
	url := os.Getenv("INVCHECK_BACKEND_URL")
	if url == "" {
		url = defaultBackendURL
	}
	return strings.TrimRight(url, "/")
}

func GetBackendTimeout() time.Duration {
	if v := os.Getenv("INVCHECK_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 10 * time.Second
}

// GetAdminUser returns the single privileged identity that sees every
// inventory record and the users tab.
func GetAdminUser() string {
	admin := os.Getenv("INVCHECK_ADMIN_USER")
	if admin == "" {
		admin = defaultAdminUser
	}
	return admin
}

// GetLoginMarker returns the plain-text payload the backend answers a
// successful login with.
func GetLoginMarker() string {
	marker := os.Getenv("INVCHECK_LOGIN_MARKER")
	if marker == "" {
		marker = defaultLoginMarker
	}
	return marker
}

func GetSessionSecret() string {
	return os.Getenv("INVCHECK_SESSION_SECRET")
}

// GetSessionMaxAge returns the session lifetime in minutes.
func GetSessionMaxAge() int {
	return getInt("INVCHECK_SESSION_MAX_AGE", 24*60)
}

func IsRollbackOnFailure() bool {
	return getBool("INVCHECK_ROLLBACK_ON_FAILURE")
}

func IsUserCreateAllowed() bool {
	return getBool("INVCHECK_ALLOW_USER_CREATE")
}

// GetLoginRate returns how many login attempts one client IP may make per minute.
func GetLoginRate() int {
	return getInt("INVCHECK_LOGIN_RATE", 20)
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
