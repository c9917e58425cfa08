package inspection

import (
	"github.com/qms/backend/internal/domain/shared"
)

// InspectionRepository defines the interface for inspection persistence
type InspectionRepository interface {
	shared.Repository[Inspection]
}
