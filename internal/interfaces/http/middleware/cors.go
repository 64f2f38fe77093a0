package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig lists the browser origins allowed to call the API. An origin
// is either "*", an exact origin such as "http://localhost:3000", or a
// pattern whose host has wildcards, such as "https://*.unsw.edu.au".
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origins until some are configured
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID", "Accept", "Origin", "Cache-Control"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

type originPattern struct {
	scheme string
	host   string
}

func parseOrigins(origins []string) (patterns []originPattern, wildcard bool) {
	for _, o := range origins {
		if o == "*" {
			wildcard = true
			continue
		}
		scheme, host, ok := strings.Cut(strings.TrimSuffix(o, "/"), "://")
		if !ok {
			scheme, host = "", o
		}
		patterns = append(patterns, originPattern{scheme: strings.ToLower(scheme), host: strings.ToLower(host)})
	}
	return patterns, wildcard
}

func (p originPattern) matches(u *url.URL) bool {
	if p.scheme != "" && p.scheme != u.Scheme {
		return false
	}
	ok, err := path.Match(p.host, strings.ToLower(u.Host))
	return err == nil && ok
}

// OriginHosts converts CORS origins to the host patterns the websocket
// upgrader checks the Origin header against.
func OriginHosts(origins []string) []string {
	patterns, wildcard := parseOrigins(origins)
	if wildcard {
		return []string{"*"}
	}
	hosts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		hosts = append(hosts, p.host)
	}
	return hosts
}

// CORS answers preflights and decorates responses to allowed origins.
// Responses to any other origin carry no CORS headers, which the browser
// treats as a refusal.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	patterns, wildcard := parseOrigins(cfg.AllowOrigins)
	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	allow := func(origin string) string {
		if origin == "" {
			return ""
		}
		if wildcard {
			return "*"
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return ""
		}
		for _, p := range patterns {
			if p.matches(u) {
				return origin
			}
		}
		return ""
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		if allowed := allow(c.GetHeader("Origin")); allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			if cfg.AllowCredentials && allowed != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			if exposeHeaders != "" {
				h.Set("Access-Control-Expose-Headers", exposeHeaders)
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
