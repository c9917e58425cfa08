package shared

import (
	"fmt"
	"strings"
)

// NormalizeCode validates a business code (letters, digits, '_' and '-', at
// most 50 characters) and returns it upper-cased
func NormalizeCode(label, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", NewDomainError(CodeInvalidInput, fmt.Sprintf("%s cannot be empty", label))
	}
	if len(code) > 50 {
		return "", NewDomainError(CodeInvalidInput, fmt.Sprintf("%s cannot exceed 50 characters", label))
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return "", NewDomainError(CodeInvalidInput, fmt.Sprintf("%s can only contain letters, numbers, underscores, and hyphens", label))
		}
	}
	return strings.ToUpper(code), nil
}

// ValidateName rejects empty names and names longer than 200 characters
func ValidateName(label, name string) error {
	if strings.TrimSpace(name) == "" {
		return NewDomainError(CodeInvalidInput, fmt.Sprintf("%s cannot be empty", label))
	}
	if len(name) > 200 {
		return NewDomainError(CodeInvalidInput, fmt.Sprintf("%s cannot exceed 200 characters", label))
	}
	return nil
}
