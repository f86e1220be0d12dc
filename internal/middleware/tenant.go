package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

// RequestKind is the handling path chosen for a request
type RequestKind string

const (
	KindPublic     RequestKind = "public"
	KindStorefront RequestKind = "storefront"
	KindDashboard  RequestKind = "dashboard"
	KindAdmin      RequestKind = "admin"
)

const (
	adminPrefix      = "/api/v1/admin"
	dashboardPrefix  = "/api/v1/dashboard"
	storefrontPrefix = "/api/v1/storefront"
)

// TenantResolver is what the tenant middlewares need from the resolver
type TenantResolver interface {
	Subdomain(host string) string
	Resolve(ctx context.Context, host, authorization string) *models.TenantContext
	ResolveSubdomain(ctx context.Context, host string) *models.TenantContext
	ResolveToken(ctx context.Context, authorization string) *models.TenantContext
	Authenticate(ctx context.Context, token string) *models.User
}

// ClassifyRequest picks the handling path. API prefixes win; any other
// request on a tenant subdomain is a storefront request.
func ClassifyRequest(path, subdomain string) RequestKind {
	switch {
	case hasPathPrefix(path, adminPrefix):
		return KindAdmin
	case hasPathPrefix(path, dashboardPrefix):
		return KindDashboard
	case hasPathPrefix(path, storefrontPrefix):
		return KindStorefront
	case subdomain != "":
		return KindStorefront
	default:
		return KindPublic
	}
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Classify records the request kind for downstream middleware and logging
func Classify(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(KeyRequestKind, ClassifyRequest(c.Request.URL.Path, resolver.Subdomain(c.Request.Host)))
		c.Next()
	}
}

// RequireStorefrontTenant resolves the store from the Host header, falling
// back to the bearer token so an owner can preview their storefront from
// an untenanted host. It rejects the request with 404 when neither matches.
func RequireStorefrontTenant(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := resolver.Resolve(c.Request.Context(), c.Request.Host, c.GetHeader("Authorization"))
		if tc == nil {
			abort(c, http.StatusNotFound, "STORE_NOT_FOUND", "No store is served at this address")
			return
		}
		c.Set(KeyTenantContext, tc)
		c.Next()
	}
}

// RequireDashboardTenant resolves the caller's store from the bearer token
// and rejects the request with 401 when it cannot be resolved
func RequireDashboardTenant(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := resolver.ResolveToken(c.Request.Context(), c.GetHeader("Authorization"))
		if tc == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "A valid token for an active store is required")
			return
		}
		c.Set(KeyTenantContext, tc)
		c.Next()
	}
}

// RequireAdmin authenticates the bearer token and requires an active ADMIN
// or SUPER_ADMIN user
func RequireAdmin(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := services.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			return
		}

		user := resolver.Authenticate(c.Request.Context(), token)
		if user == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		if !user.IsActive || !user.Role.IsElevated() {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
			return
		}

		c.Set(KeyAdmin, user)
		c.Next()
	}
}
