package supplier

import (
	"context"

	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/supplier"
	"go.uber.org/zap"
)

// Subscribe wires the supplier context to the events it reacts to
func Subscribe(bus shared.EventSubscriber, svc *SupplierService) {
	bus.SubscribeContext(inspection.ContextName, supplier.ContextName,
		inspection.EventTypeInspectionFailed, shared.EventHandlerFunc(svc.HandleInspectionFailed))
}

// HandleInspectionFailed records a quality issue against the supplier of a failed inspection
func (s *SupplierService) HandleInspectionFailed(ctx context.Context, e shared.DomainEvent) error {
	ctx, err := common.EventTenant(ctx, e)
	if err != nil {
		return err
	}
	supplierID, err := common.EventUUID(e, "supplierId")
	if err != nil {
		return err
	}

	reason := e.String("reason")
	if reason == "" {
		reason = "inspection " + e.String("inspectionId") + " failed"
	}

	resp, err := s.RecordQualityIssue(ctx, supplierID, RecordQualityIssueRequest{Reason: reason})
	if err != nil {
		return err
	}
	s.logger.Info("quality issue recorded from failed inspection",
		zap.String("supplier_id", supplierID.String()),
		zap.String("inspection_id", e.String("inspectionId")),
		zap.Int("quality_issues", resp.QualityIssues),
		zap.String("status", resp.Status),
	)
	return nil
}
