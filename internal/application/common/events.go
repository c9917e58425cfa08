package common

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/tenancy"
)

// EventTenant returns a context scoped to the tenant that owns e.
// The publisher's tenant is kept when present; an event naming a different
// tenant is rejected.
func EventTenant(ctx context.Context, e shared.DomainEvent) (context.Context, error) {
	owner := e.String("tenantId")
	active := tenancy.TenantID(ctx)

	switch {
	case active == "" && owner == "":
		return nil, shared.ErrNoTenantContext
	case active == "":
		return tenancy.NewContext(ctx, tenancy.TenantContext{TenantID: owner}), nil
	case owner != "" && owner != active:
		return nil, shared.NewDomainError(shared.CodeForbidden,
			fmt.Sprintf("event %s belongs to tenant %s, not %s", e.Type(), owner, active))
	default:
		return ctx, nil
	}
}

// EventUUID reads a uuid field from the payload of e
func EventUUID(e shared.DomainEvent, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(e.String(field))
	if err != nil {
		return uuid.Nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("event %s has an invalid %s", e.Type(), field))
	}
	return id, nil
}
