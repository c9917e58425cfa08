package inspection

import (
	"context"

	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/component"
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/supplier"
	"go.uber.org/zap"
)

// Subscribe wires the inspection context to the events it reacts to
func Subscribe(bus shared.EventSubscriber, svc *InspectionService) {
	bus.SubscribeContext(component.ContextName, inspection.ContextName,
		component.EventTypeComponentRegistered, shared.EventHandlerFunc(svc.HandleComponentRegistered))
	bus.SubscribeContext(supplier.ContextName, inspection.ContextName,
		supplier.EventTypeSupplierBlocked, shared.EventHandlerFunc(svc.HandleSupplierBlocked))
}

// HandleComponentRegistered schedules the incoming inspection of a new component
func (s *InspectionService) HandleComponentRegistered(ctx context.Context, e shared.DomainEvent) error {
	ctx, err := common.EventTenant(ctx, e)
	if err != nil {
		return err
	}
	componentID, err := common.EventUUID(e, "componentId")
	if err != nil {
		return err
	}
	supplierID, err := common.EventUUID(e, "supplierId")
	if err != nil {
		return err
	}

	_, err = s.schedule(ctx, componentID, supplierID,
		inspection.DefaultSampleSize, inspection.DefaultAcceptableDefectRate)
	return err
}

// HandleSupplierBlocked puts the pending inspections of a blocked supplier on hold
func (s *InspectionService) HandleSupplierBlocked(ctx context.Context, e shared.DomainEvent) error {
	ctx, err := common.EventTenant(ctx, e)
	if err != nil {
		return err
	}
	supplierID, err := common.EventUUID(e, "supplierId")
	if err != nil {
		return err
	}

	pending, err := s.repo.Count(ctx, map[string]any{
		"supplier_id": supplierID.String(),
		"result":      string(inspection.ResultPending),
	})
	if err != nil {
		return err
	}
	if pending == 0 {
		return nil
	}

	s.logger.Warn("pending inspections on hold for blocked supplier",
		zap.String("supplier_id", supplierID.String()),
		zap.String("reason", e.String("reason")),
		zap.Int64("pending", pending),
	)
	return nil
}
