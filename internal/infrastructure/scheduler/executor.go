package scheduler

import (
	"context"
	"fmt"
	"sync"
)

// JobHandler performs the work behind a job type
type JobHandler func(ctx context.Context) error

// RegistryExecutor routes jobs to handlers registered per job type.
// The application layer registers its handlers at startup; the scheduler
// package stays free of service dependencies.
type RegistryExecutor struct {
	mu       sync.RWMutex
	handlers map[JobType]JobHandler
}

// NewRegistryExecutor creates an empty executor
func NewRegistryExecutor() *RegistryExecutor {
	return &RegistryExecutor{
		handlers: make(map[JobType]JobHandler),
	}
}

// Register binds a handler to a job type, replacing any previous handler
func (e *RegistryExecutor) Register(jobType JobType, handler JobHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[jobType] = handler
}

// Execute runs the handler registered for the job's type
func (e *RegistryExecutor) Execute(ctx context.Context, job *Job) error {
	e.mu.RLock()
	handler, ok := e.handlers[job.Type]
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, job.Type)
	}

	return handler(ctx)
}

// Ensure RegistryExecutor implements JobExecutor
var _ JobExecutor = (*RegistryExecutor)(nil)
