package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerProtection guards the API docs. Disabled docs answer 404; a
// non-empty allow list (IPs or CIDRs) answers 403 to everyone else.
func SwaggerProtection(cfg config.SwaggerConfig) gin.HandlerFunc {
	prefixes := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDKey)
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				"NOT_FOUND", "API documentation is not available", requestID))
			return
		}

		if len(prefixes) > 0 && !ipAllowed(c.ClientIP(), prefixes) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				"FORBIDDEN", "Access to API documentation is restricted", requestID))
			return
		}

		c.Next()
	}
}

func parseAllowList(entries []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				prefixes = append(prefixes, p.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return prefixes
}

func ipAllowed(ip string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
