package product

import (
	"context"
	"fmt"
)

// Executor applies one operation to one product id. Remote failures are
// captured in the ItemResult instead of being returned.
type Executor struct {
	repository ProductRepository
	flag       string
}

func NewExecutor(repository ProductRepository, flag string) (*Executor, error) {
	if flag == "" {
		flag = DefaultFlagColumn
	}
	if err := ValidateFlagName(flag); err != nil {
		return nil, err
	}
	return &Executor{repository: repository, flag: flag}, nil
}

func (e *Executor) Execute(ctx context.Context, op Operation, id string) ItemResult {
	affected, err := e.apply(ctx, op, id)
	if err != nil {
		return FailedItem(id, err)
	}
	return ItemResult{ID: id, Succeeded: true, AffectedRows: affected}
}

func (e *Executor) apply(ctx context.Context, op Operation, id string) (int64, error) {
	if op == OperationDelete {
		return e.repository.Delete(ctx, id)
	}

	value, ok := op.FlagValue()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperation, op)
	}
	return e.repository.SetFlag(ctx, id, e.flag, value)
}
