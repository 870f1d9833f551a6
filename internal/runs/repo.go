package runs

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a run id has no stored snapshot.
var ErrNotFound = errors.New("run not found")

// Repo stores completed run snapshots.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
}
