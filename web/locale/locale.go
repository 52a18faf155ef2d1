// Package locale loads the UI translations and picks a localizer per request.
package locale

import (
	"io/fs"
	"strings"

	"github.com/invcheck/invcheck/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// ContextKey is the gin context key holding the request's *i18n.Localizer.
const ContextKey = "localizer"

var i18nBundle *i18n.Bundle

// InitLocalizer parses every TOML file under translation/ in i18nFS. English
// is the fallback language.
func InitLocalizer(i18nFS fs.FS) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(i18nFS, bundle); err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	var sep string = "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}

	return templateData
}

// I18n localizes key. Params are "name==value" pairs. The key itself is
// returned when there is no localizer or no translation.
func I18n(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Debugf("Failed to localize message %q: %v", key, err)
		return key
	}

	return msg
}

// NewLocalizer returns a localizer for the given preference list, or nil when
// no bundle has been loaded.
func NewLocalizer(langs ...string) *i18n.Localizer {
	if i18nBundle == nil {
		return nil
	}
	return i18n.NewLocalizer(i18nBundle, langs...)
}

// LocalizerMiddleware picks the language from the "lang" cookie, then the
// Accept-Language header.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var langs []string
		if cookie, err := c.Request.Cookie("lang"); err == nil && cookie.Value != "" {
			langs = append(langs, cookie.Value)
		}
		if accept := c.GetHeader("Accept-Language"); accept != "" {
			langs = append(langs, accept)
		}

		c.Set(ContextKey, NewLocalizer(langs...))
		c.Next()
	}
}

// FromContext returns the localizer LocalizerMiddleware stored, or nil.
func FromContext(c *gin.Context) *i18n.Localizer {
	if v, ok := c.Get(ContextKey); ok {
		if loc, ok := v.(*i18n.Localizer); ok {
			return loc
		}
	}
	return nil
}

func parseTranslationFiles(i18nFS fs.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(i18nFS, path)
			if err != nil {
				return err
			}

			_, err = bundle.ParseMessageFileBytes(data, path)
			return err
		})
}
