package common

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// reserved subdomains that never resolve to a customer site
var reservedSubdomains = []string{"www", "admin", "api", "mail", "ftp", "smtp"}

func platformDomain() string {
	d := os.Getenv("PLATFORM_DOMAIN")
	if d == "" {
		d = "offerpress.com"
	}
	return d
}

// ResolveSiteHost inspects the request host and records how the site should
// be looked up: a subdomain of the platform domain sets "site_subdomain",
// any other host is treated as a customer's custom domain and sets
// "site_domain". Admin/API hosts set neither.
func ResolveSiteHost() gin.HandlerFunc {
	platform := platformDomain()

	return func(c *gin.Context) {
		host := c.Request.Host

		// Remove port if present (for local development)
		if strings.Contains(host, ":") {
			host = strings.Split(host, ":")[0]
		}

		switch {
		case host == platform || host == "localhost":
			// bare platform host, nothing to resolve
		case strings.HasSuffix(host, "."+platform) || strings.HasSuffix(host, ".localhost"):
			sub := strings.Split(host, ".")[0]
			if !isReservedSubdomain(sub) {
				c.Set("site_subdomain", sub)
			}
		default:
			c.Set("site_domain", host)
		}

		c.Next()
	}
}

func isReservedSubdomain(sub string) bool {
	for _, r := range reservedSubdomains {
		if sub == r {
			return true
		}
	}
	return false
}

// RequestOrigin reconstructs the scheme://host origin of the request, used
// as the reference origin when classifying outbound click destinations.
func RequestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
