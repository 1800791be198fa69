package product

import (
	"fmt"
	"regexp"
	"strings"
)

type Operation string

const (
	OperationDelete     Operation = "delete"
	OperationActivate   Operation = "activate"
	OperationDeactivate Operation = "deactivate"

	MaxTargetIDs      = 100
	MaxTargetIDLength = 128

	DefaultFlagColumn = "is_available"
)

var validOperations = map[Operation]bool{
	OperationDelete:     true,
	OperationActivate:   true,
	OperationDeactivate: true,
}

var flagNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func (o Operation) IsValid() bool {
	return validOperations[o]
}

// FlagValue reports the availability value an operation writes. The second
// return is false for operations that do not touch the flag.
func (o Operation) FlagValue() (bool, bool) {
	switch o {
	case OperationActivate:
		return true, true
	case OperationDeactivate:
		return false, true
	default:
		return false, false
	}
}

// ValidateFlagName guards column names that are interpolated into SQL.
func ValidateFlagName(flag string) error {
	if !flagNamePattern.MatchString(flag) {
		return fmt.Errorf("%w: %q", ErrInvalidFlag, flag)
	}
	return nil
}

type BulkProductCommand struct {
	Operation Operation `json:"operation"`
	TargetIDs []string  `json:"targetIds"`
}

func (cmd *BulkProductCommand) Validate() error {
	validationErr := NewValidationError()

	switch {
	case cmd.Operation == "":
		validationErr.Add(ErrorDetail{
			Field:   "operation",
			Code:    ErrCodeValidationRequired,
			Message: "operation is required",
		})
	case !cmd.Operation.IsValid():
		validationErr.Add(ErrorDetail{
			Field:   "operation",
			Code:    ErrCodeInvalidOperation,
			Message: fmt.Sprintf("operation must be one of: %s, %s, %s", OperationDelete, OperationActivate, OperationDeactivate),
		})
	}

	if len(cmd.TargetIDs) == 0 {
		validationErr.Add(ErrorDetail{
			Field:   "targetIds",
			Code:    ErrCodeValidationRequired,
			Message: "targetIds cannot be empty",
		})
	}

	if len(cmd.TargetIDs) > MaxTargetIDs {
		validationErr.Add(ErrorDetail{
			Field:   "targetIds",
			Code:    ErrCodeValidationMaxLength,
			Message: fmt.Sprintf("targetIds cannot exceed %d items", MaxTargetIDs),
		})
	}

	if len(cmd.TargetIDs) <= MaxTargetIDs {
		seen := make(map[string]struct{}, len(cmd.TargetIDs))
		for i, id := range cmd.TargetIDs {
			if detail := validateTargetID(i, id, seen); detail != nil {
				validationErr.Add(*detail)
			}
		}
	}

	if validationErr.HasErrors() {
		return validationErr
	}
	return nil
}

func validateTargetID(index int, id string, seen map[string]struct{}) *ErrorDetail {
	field := fmt.Sprintf("targetIds[%d]", index)

	if strings.TrimSpace(id) == "" {
		return &ErrorDetail{
			Field:   field,
			Code:    ErrCodeValidationRequired,
			Message: "target id cannot be blank",
		}
	}
	if len(id) > MaxTargetIDLength {
		return &ErrorDetail{
			Field:   field,
			Code:    ErrCodeValidationMaxLength,
			Message: fmt.Sprintf("target id must be at most %d characters", MaxTargetIDLength),
		}
	}
	if _, dup := seen[id]; dup {
		return &ErrorDetail{
			Field:   field,
			Code:    ErrCodeDuplicateTarget,
			Message: fmt.Sprintf("target id %q appears more than once", id),
		}
	}
	seen[id] = struct{}{}
	return nil
}
