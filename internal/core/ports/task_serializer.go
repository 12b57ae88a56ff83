package ports

import "context"

// TaskSerializer runs mutations of the same task one at a time. Mutations of
// different tasks may run concurrently.
type TaskSerializer interface {
	Do(ctx context.Context, taskID int64, fn func(ctx context.Context) error) error
}
