package ports

import (
	"context"

	"gosof/domain/core"
	"gosof/domain/sof"
)

// RunRepository defines the interface for compute-run persistence
type RunRepository interface {
	Create(ctx context.Context, run *sof.Run) error
	GetByID(ctx context.Context, id core.RunID) (*sof.Run, error)
	List(ctx context.Context, limit, offset int) ([]*sof.Run, error)
}
