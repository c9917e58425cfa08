package persistence

import (
	"maps"
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to every aggregate table
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

func withCommon(fields ...string) map[string]bool {
	m := maps.Clone(CommonSortFields)
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Per-table columns that may be used for sorting and equality filters
var (
	CustomerSortFields   = withCommon("code", "name", "email")
	SupplierSortFields   = withCommon("code", "name", "status", "quality_issues")
	ComponentSortFields  = withCommon("part_number", "name", "supplier_id", "unit_cost")
	InspectionSortFields = withCommon("component_id", "supplier_id", "result", "defect_rate")
)
