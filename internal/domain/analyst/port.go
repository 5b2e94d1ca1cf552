package analyst

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record has the id
var ErrNotFound = errors.New("analysis not found")

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Analysis, error)
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
}
