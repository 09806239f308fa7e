package ports

import (
	"context"
)

// Frontend drives the widget from an interactive surface. Run blocks until
// the input source is exhausted or ctx is canceled.
type Frontend interface {
	Run(ctx context.Context) error
}
