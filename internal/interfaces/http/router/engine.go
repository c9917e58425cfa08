package router

import (
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	componentapp "github.com/qms/backend/internal/application/component"
	customerapp "github.com/qms/backend/internal/application/customer"
	inspectionapp "github.com/qms/backend/internal/application/inspection"
	supplierapp "github.com/qms/backend/internal/application/supplier"
	"github.com/qms/backend/internal/infrastructure/circuit"
	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"github.com/qms/backend/internal/interfaces/http/handler"
	"github.com/qms/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Version is reported by the system info endpoint
var Version = "dev"

// Dependencies are the runtime components the HTTP layer is wired to
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Meter    metric.Meter // optional
	Tenants  *tenancy.Manager
	Services *registry.ServiceRegistry
	Circuits *circuit.Registry
	Database handler.Pinger // optional
}

// New builds the gin engine. Every request passes request context, logging,
// error rendering, recovery, tracing and metrics; the bounded-context routes
// additionally pass tenant resolution, tenant enforcement and a circuit breaker
// per route.
func New(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestContextMiddleware(middleware.RequestContextOptions{}),
		logger.GinMiddleware(deps.Logger),
		middleware.ErrorHandler(middleware.ErrorHandlerConfig{Env: cfg.App.Env, Logger: deps.Logger}),
		logger.Recovery(deps.Logger),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
	)
	if deps.Meter != nil {
		engine.Use(middleware.HTTPMetrics(deps.Meter, deps.Logger))
	}

	extract, err := TenantExtractor(cfg.Tenant, cfg.JWT)
	if err != nil {
		return nil, err
	}

	var opts []RouterOption
	if slices.Contains(cfg.Tenant.Sources, "param") {
		opts = append(opts, WithTenantParam(cfg.Tenant.Param))
	}
	r := NewRouter(engine, opts...)

	system := handler.NewSystemHandler(cfg.App.Name, Version, deps.Database, deps.Circuits)
	engine.GET("/health", system.Health)
	api := r.API()
	api.GET("/system/info", system.GetSystemInfo)
	api.GET("/circuits", system.Circuits)

	scoped := []gin.HandlerFunc{
		middleware.TenantMiddleware(deps.Tenants, extract),
		middleware.EnforceTenantIsolation(deps.Tenants),
		middleware.CircuitBreaker(deps.Circuits, middleware.CircuitBreakerOptions{
			Options: circuit.Options{
				Threshold:    cfg.Circuit.Threshold,
				ResetTimeout: cfg.Circuit.ResetTimeout,
			},
		}),
	}

	r.Register(contextGroups(deps.Services, scoped)...)
	r.Setup()

	return engine, nil
}

func contextGroups(services *registry.ServiceRegistry, scoped []gin.HandlerFunc) []RouteRegistrar {
	customers := handler.NewCustomerHandler(registry.NewHandle[customerapp.Service](services, customerapp.ServiceName))
	suppliers := handler.NewSupplierHandler(registry.NewHandle[supplierapp.Service](services, supplierapp.ServiceName))
	components := handler.NewComponentHandler(registry.NewHandle[componentapp.Service](services, componentapp.ServiceName))
	inspections := handler.NewInspectionHandler(registry.NewHandle[inspectionapp.Service](services, inspectionapp.ServiceName))

	return []RouteRegistrar{
		NewDomainGroup("customer", "/customers").Use(scoped...).
			POST("", customers.Create).
			GET("", customers.List).
			GET("/:id", customers.GetByID),
		NewDomainGroup("supplier", "/suppliers").Use(scoped...).
			POST("", suppliers.Create).
			GET("", suppliers.List).
			GET("/:id", suppliers.GetByID).
			POST("/:id/block", suppliers.Block).
			POST("/:id/unblock", suppliers.Unblock).
			POST("/:id/quality-issues", suppliers.RecordQualityIssue),
		NewDomainGroup("component", "/components").Use(scoped...).
			POST("", components.Register).
			GET("", components.List).
			GET("/:id", components.GetByID),
		NewDomainGroup("inspection", "/inspections").Use(scoped...).
			POST("", inspections.Schedule).
			GET("", inspections.List).
			GET("/:id", inspections.GetByID).
			POST("/:id/complete", inspections.Complete),
	}
}

// TenantExtractor builds the extractor chain named by cfg.Sources, tried in order
func TenantExtractor(cfg config.TenantConfig, jwtCfg config.JWTConfig) (middleware.TenantExtractor, error) {
	extractors := make([]middleware.TenantExtractor, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		switch src {
		case "header":
			extractors = append(extractors, middleware.FromHeader(cfg.Header))
		case "param":
			extractors = append(extractors, middleware.FromRouteParam(cfg.Param))
		case "subdomain":
			extractors = append(extractors, middleware.FromSubdomain(cfg.BaseDomain))
		case "jwt":
			var opts []jwt.ParserOption
			if jwtCfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(jwtCfg.Issuer))
			}
			extractors = append(extractors, middleware.FromJWTClaim([]byte(jwtCfg.Secret), jwtCfg.TenantClaim, opts...))
		default:
			return nil, fmt.Errorf("unknown tenant source %q", src)
		}
	}
	if len(extractors) == 0 {
		return nil, fmt.Errorf("no tenant source configured")
	}
	return middleware.FirstOf(extractors...), nil
}
