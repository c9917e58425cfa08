package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/persistence/tenant"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
)

// tenantRow is the pointer side of a tenant-owned aggregate mapped by GORM
type tenantRow[T any] interface {
	*T
	shared.TenantOwned
	GetID() uuid.UUID
}

// TenantRepository implements shared.Repository for a tenant-owned aggregate.
// Reads and writes are limited to the tenant in the request context; the
// tenant manager audits any row that would cross that boundary.
type TenantRepository[T any, PT tenantRow[T]] struct {
	db         *tenant.TenantDB
	manager    *tenancy.Manager
	entity     string
	sortFields map[string]bool
}

// NewTenantRepository creates a repository for entity (used in error messages).
// sortFields whitelists the columns usable for ordering and filtering.
func NewTenantRepository[T any, PT tenantRow[T]](db *gorm.DB, manager *tenancy.Manager, entity string, sortFields map[string]bool) *TenantRepository[T, PT] {
	return &TenantRepository[T, PT]{
		db:         tenant.NewTenantDB(db),
		manager:    manager,
		entity:     entity,
		sortFields: sortFields,
	}
}

// Create inserts entity after checking it belongs to the active tenant
func (r *TenantRepository[T, PT]) Create(ctx context.Context, entity *T) error {
	if err := r.verify(ctx, PT(entity)); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return r.translate(err)
	}
	return nil
}

// Update overwrites every mutable column of entity. The owning tenant,
// ID and creation time are never changed.
func (r *TenantRepository[T, PT]) Update(ctx context.Context, entity *T) error {
	if err := r.verify(ctx, PT(entity)); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit("id", "created_at", tenancy.TenantColumn).
		Updates(entity)
	if result.Error != nil {
		return r.translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.notFound()
	}
	return nil
}

// FindByID finds an entity of the active tenant by ID
func (r *TenantRepository[T, PT]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, r.translate(err)
	}
	if err := r.verify(ctx, PT(&entity)); err != nil {
		return nil, r.notFound()
	}
	return &entity, nil
}

// FindOne finds the first entity matching conditions within the active tenant
func (r *TenantRepository[T, PT]) FindOne(ctx context.Context, conditions tenancy.Query) (*T, error) {
	q, err := r.isolate(ctx, conditions)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := r.db.Unscoped().WithContext(ctx).Where(map[string]any(q)).First(&entity).Error; err != nil {
		return nil, r.translate(err)
	}
	return &entity, nil
}

// FindAll lists entities of the active tenant matching filter.Conditions
func (r *TenantRepository[T, PT]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	q, err := r.isolate(ctx, filter.Conditions)
	if err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, r.sortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	db := r.db.Unscoped().WithContext(ctx).
		Where(map[string]any(q)).
		Order(fmt.Sprintf("%s %s", orderBy, orderDir))
	if filter.PageSize > 0 {
		db = db.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var entities []T
	if err := db.Find(&entities).Error; err != nil {
		return nil, r.translate(err)
	}

	owned := entities[:0]
	for i := range entities {
		if r.verify(ctx, PT(&entities[i])) == nil {
			owned = append(owned, entities[i])
		}
	}
	return owned, nil
}

// Count counts entities of the active tenant matching conditions
func (r *TenantRepository[T, PT]) Count(ctx context.Context, conditions map[string]any) (int64, error) {
	q, err := r.isolate(ctx, conditions)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.Unscoped().WithContext(ctx).Model(new(T)).Where(map[string]any(q)).Count(&count).Error; err != nil {
		return 0, r.translate(err)
	}
	return count, nil
}

// isolate validates filter columns and adds the tenant condition
func (r *TenantRepository[T, PT]) isolate(ctx context.Context, conditions map[string]any) (tenancy.Query, error) {
	for column := range conditions {
		if column != tenancy.TenantColumn && !r.sortFields[column] {
			return nil, fmt.Errorf("%w: cannot filter %s by %q", shared.ErrInvalidInput, r.entity, column)
		}
	}
	return r.manager.ApplyTenantIsolation(ctx, tenancy.Query(conditions))
}

func (r *TenantRepository[T, PT]) verify(ctx context.Context, entity PT) error {
	ok, err := r.manager.VerifyTenantData(ctx, entity)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %s belongs to another tenant", shared.ErrForbidden, r.entity, entity.GetID())
	}
	return nil
}

func (r *TenantRepository[T, PT]) notFound() error {
	return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("%s not found", r.entity))
}

func (r *TenantRepository[T, PT]) translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.notFound()
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", shared.ErrAlreadyExists, r.entity)
	default:
		return err
	}
}
