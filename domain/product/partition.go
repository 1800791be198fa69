package product

import "fmt"

const DefaultMicroBatchSize = 5

// Partition splits ids into ordered micro-batches of at most size ids. The
// returned slices share the backing array of ids.
func Partition(ids []string, size int) ([][]string, error) {
	if size < 1 {
		return nil, fmt.Errorf("micro-batch size must be positive, got %d", size)
	}
	if len(ids) == 0 {
		return nil, requestSizeError(ErrCodeValidationRequired, "targetIds cannot be empty")
	}
	if len(ids) > MaxTargetIDs {
		return nil, requestSizeError(ErrCodeValidationMaxLength, fmt.Sprintf("targetIds cannot exceed %d items", MaxTargetIDs))
	}

	batches := make([][]string, 0, MicroBatchCount(len(ids), size))
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end:end])
	}
	return batches, nil
}

func MicroBatchCount(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}

func requestSizeError(code, message string) *ValidationError {
	validationErr := NewValidationError()
	validationErr.Add(ErrorDetail{Field: "targetIds", Code: code, Message: message})
	return validationErr
}
