package loader

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by LoadOne when the requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrInconsistentBatch matches any *InconsistentBatchError.
var ErrInconsistentBatch = errors.New("inconsistent batch")

// InconsistentBatchError reports requested ids that produced no base row,
// usually because they were deleted while the batch was being read.
type InconsistentBatchError struct {
	Relation string // empty for the base fetch
	Missing  []uint
}

func (e *InconsistentBatchError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("inconsistent batch: no rows for ids %v", e.Missing)
	}
	return fmt.Sprintf("inconsistent batch: relation %q returned no parent rows for ids %v", e.Relation, e.Missing)
}

func (e *InconsistentBatchError) Is(target error) bool {
	return target == ErrInconsistentBatch
}
