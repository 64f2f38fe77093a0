package middleware

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig guards the API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // single IPs or CIDRs; empty allows every caller
}

// SwaggerProtection returns the guard for /swagger. A disabled endpoint
// answers 404. The IP allow list is checked before authentication, and
// authenticate only runs when RequireAuth is set.
func SwaggerProtection(cfg SwaggerConfig, authenticate gin.HandlerFunc) (gin.HandlerFunc, error) {
	allowed, err := parseAllowedIPs(cfg.AllowedIPs)
	if err != nil {
		return nil, err
	}
	if cfg.RequireAuth && authenticate == nil {
		return nil, fmt.Errorf("swagger: require_auth set without an authenticator")
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewFailResponse(
				shared.CodeNotFound, "API documentation is not available"))
			return
		}
		if len(allowed) > 0 && !ipAllowed(c.ClientIP(), allowed) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewFailResponse(
				shared.CodeForbidden, "Access to API documentation is restricted"))
			return
		}
		if cfg.RequireAuth {
			authenticate(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}, nil
}

// parseAllowedIPs turns every entry into a prefix; a bare IP becomes a
// single-address prefix
func parseAllowedIPs(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("swagger: invalid allowed_ips entry %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("swagger: invalid allowed_ips entry %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func ipAllowed(clientIP string, allowed []netip.Prefix) bool {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range allowed {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
