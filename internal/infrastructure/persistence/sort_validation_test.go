package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"asc", "ASC"},
		{"  Asc  ", "ASC"},
		{"desc", "DESC"},
		{"sideways", "DESC"},
		{"ASC; DROP TABLE inspections;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField_Inspections(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"result", "result", "result"},
		{"defect rate", "defect_rate", "defect_rate"},
		{"supplier", " supplier_id ", "supplier_id"},
		{"common column", "updated_at", "updated_at"},
		{"empty falls back", "", "created_at"},
		{"camel case is not a column", "defectRate", "created_at"},
		{"column of another table", "part_number", "created_at"},
		{"sample size is not sortable", "sample_size", "created_at"},
		{"expression", "defect_rate DESC, (SELECT 1)", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, InspectionSortFields, "created_at"))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	tests := []struct {
		table     string
		whitelist map[string]bool
		allowed   []string
		rejected  []string
	}{
		{
			table:     "customers",
			whitelist: CustomerSortFields,
			allowed:   []string{"code", "name", "email"},
			rejected:  []string{"status", "tenant_id"},
		},
		{
			table:     "suppliers",
			whitelist: SupplierSortFields,
			allowed:   []string{"code", "name", "status", "quality_issues"},
			rejected:  []string{"email", "block_reason", "tenant_id"},
		},
		{
			table:     "components",
			whitelist: ComponentSortFields,
			allowed:   []string{"part_number", "name", "supplier_id", "unit_cost"},
			rejected:  []string{"code", "result", "tenant_id"},
		},
		{
			table:     "inspections",
			whitelist: InspectionSortFields,
			allowed:   []string{"component_id", "supplier_id", "result", "defect_rate"},
			rejected:  []string{"name", "defects", "tenant_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			for _, f := range append([]string{"id", "created_at", "updated_at"}, tt.allowed...) {
				assert.True(t, tt.whitelist[f], "%s should allow %s", tt.table, f)
			}
			for _, f := range tt.rejected {
				assert.False(t, tt.whitelist[f], "%s should not allow %s", tt.table, f)
			}
		})
	}
}

func TestWithCommon_DoesNotShareTheCommonSet(t *testing.T) {
	fields := withCommon("severity")

	assert.True(t, fields["severity"])
	assert.True(t, fields["id"])
	assert.False(t, CommonSortFields["severity"])
	assert.Len(t, CommonSortFields, 3)
}

func TestValidateSortField_RejectsInjection(t *testing.T) {
	payloads := []string{
		"result; DROP TABLE inspections;--",
		"defect_rate' OR '1'='1",
		"result UNION SELECT * FROM suppliers",
		"CASE WHEN 1=1 THEN result ELSE defect_rate END",
		"result\n; DROP TABLE inspections",
	}

	whitelists := map[string]map[string]bool{
		"customers":   CustomerSortFields,
		"suppliers":   SupplierSortFields,
		"components":  ComponentSortFields,
		"inspections": InspectionSortFields,
	}
	for table, whitelist := range whitelists {
		for _, payload := range payloads {
			assert.Equal(t, "created_at", ValidateSortField(payload, whitelist, "created_at"),
				"%s accepted %q", table, payload)
		}
	}
}
