package domain

import "fmt"

// Condition codes for the failure classes the engine must recognize. These
// never terminate an evaluation; they steer how a check degrades.
const (
	CondMissingData        = "MISSING_DATA"
	CondGeometryMismatch   = "GEOMETRY_MISMATCH"
	CondConfigError        = "CONFIG_ERROR"
	CondInternalCheckError = "INTERNAL_CHECK_ERROR"
)

// ConditionError is a classified engine condition.
type ConditionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ConditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCondition creates a classified condition.
func NewCondition(code, format string, args ...any) *ConditionError {
	return &ConditionError{Code: code, Message: fmt.Sprintf(format, args...)}
}
