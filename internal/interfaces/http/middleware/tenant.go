package middleware

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"go.uber.org/zap"
)

// TenantIDKey is the gin context key holding the active tenant ID
const TenantIDKey = "tenant_id"

// MaxTenantIDLength bounds a tenant ID taken from a request
const MaxTenantIDLength = 64

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// TenantExtractor derives the tenant ID of a request. It reports false when
// the request does not name a tenant.
type TenantExtractor func(c *gin.Context) (string, bool)

// FromHeader reads the tenant ID from the named request header
func FromHeader(name string) TenantExtractor {
	return func(c *gin.Context) (string, bool) {
		id := strings.TrimSpace(c.GetHeader(name))
		return id, id != ""
	}
}

// FromRouteParam reads the tenant ID from the named route parameter
func FromRouteParam(name string) TenantExtractor {
	return func(c *gin.Context) (string, bool) {
		id := c.Param(name)
		return id, id != ""
	}
}

// FromSubdomain reads the tenant ID from the first label of the host under
// baseDomain, e.g. "acme" for "acme.qms.example.com" with base "qms.example.com".
func FromSubdomain(baseDomain string) TenantExtractor {
	suffix := "." + strings.TrimPrefix(strings.ToLower(baseDomain), ".")
	return func(c *gin.Context) (string, bool) {
		host := strings.ToLower(c.Request.Host)
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if baseDomain == "" || !strings.HasSuffix(host, suffix) {
			return "", false
		}
		sub := strings.TrimSuffix(host, suffix)
		if sub == "" || sub == "www" {
			return "", false
		}
		return strings.Split(sub, ".")[0], true
	}
}

// FromJWTClaim reads the tenant ID from claim of the HMAC-signed bearer token
// in the Authorization header. Tokens that fail verification name no tenant.
// opts add checks such as jwt.WithIssuer.
func FromJWTClaim(secret []byte, claim string, opts ...jwt.ParserOption) TenantExtractor {
	opts = append([]jwt.ParserOption{jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	})}, opts...)
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *gin.Context) (string, bool) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			return "", false
		}
		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			logger.FromContext(c.Request.Context()).Debug("bearer token rejected", zap.Error(err))
			return "", false
		}
		id, _ := claims[claim].(string)
		return id, id != ""
	}
}

// FirstOf returns the tenant named by the first extractor that finds one
func FirstOf(extractors ...TenantExtractor) TenantExtractor {
	return func(c *gin.Context) (string, bool) {
		for _, extract := range extractors {
			if id, ok := extract(c); ok {
				return id, true
			}
		}
		return "", false
	}
}

// TenantMiddleware establishes the tenant context of each request. The tenant
// travels in the request's context.Context, so concurrent requests never see
// each other's tenant. The context is cleared when the handler chain returns.
func TenantMiddleware(manager *tenancy.Manager, extract TenantExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := extract(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Tenant ID not found in request"})
			return
		}
		if len(tenantID) > MaxTenantIDLength || !tenantIDPattern.MatchString(tenantID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
			return
		}

		md := tenancy.Metadata{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
		if rc, ok := GetRequestContext(c); ok {
			md.RequestID = rc.RequestID
		}

		ctx, err := manager.SetTenantContext(c.Request.Context(), tenantID, md)
		if err != nil {
			if errors.Is(err, shared.ErrInvalidInput) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		c.Request = c.Request.WithContext(manager.ClearTenantContext(c.Request.Context()))
	}
}

// EnforceTenantIsolation rejects requests that reach it without a tenant
// context and echoes the active tenant in X-Tenant-ID
func EnforceTenantIsolation(manager *tenancy.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := manager.Current(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No tenant context available"})
			return
		}
		c.Header(TenantIDHeader, tc.TenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant ID set by TenantMiddleware
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}
