package tenancy

import (
	"context"

	"github.com/qms/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Severity ranks security audit events
type Severity string

// Audit severities
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Audit event names
const (
	AuditTenantCreated      = "TENANT_CREATED"
	AuditTenantContextSet   = "TENANT_CONTEXT_SET"
	AuditTenantSwitched     = "TENANT_SWITCHED"
	AuditTenantCleared      = "TENANT_CONTEXT_CLEARED"
	AuditCrossTenantAccess  = "CROSS_TENANT_ACCESS"
	AuditTenantQueryRewrite = "TENANT_QUERY_OVERRIDDEN"
)

// AuditLogger writes security audit events as structured log entries
// tagged audit=true
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates an audit logger
func NewAuditLogger(l *zap.Logger) *AuditLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuditLogger{logger: l.Named("audit")}
}

// Record logs event at a level matching severity. The request ID carried by ctx is attached.
func (a *AuditLogger) Record(ctx context.Context, event string, severity Severity, fields ...zap.Field) {
	fields = append(fields,
		zap.Bool("audit", true),
		zap.String("event", event),
		zap.String("severity", string(severity)),
	)
	if id := logger.RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	switch severity {
	case SeverityHigh:
		a.logger.Error("security audit event", fields...)
	case SeverityMedium:
		a.logger.Warn("security audit event", fields...)
	default:
		a.logger.Info("security audit event", fields...)
	}
}
