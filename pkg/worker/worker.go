package worker

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/screa/brainwallet-scanner/internal/index"
	"github.com/screa/brainwallet-scanner/pkg/types"
)

// LocalIndexProvider is the provider name reported for local index matches
const LocalIndexProvider = "local-index"

// ErrNoSource is reported when a worker has neither an index nor a checker
var ErrNoSource = errors.New("no lookup source configured")

// Checker answers whether an address has on-chain history.
// *provider.Pool satisfies it.
type Checker interface {
	CheckAddress(ctx context.Context, address string) types.ProviderResult
}

// Worker handles individual address lookups
type Worker struct {
	checker  Checker
	index    *index.Index
	attempts *int64
}

// NewWorker creates a new worker instance. checker may be nil for offline
// scans, idx may be nil when no local index is loaded.
func NewWorker(checker Checker, idx *index.Index, attempts *int64) *Worker {
	return &Worker{
		checker:  checker,
		index:    idx,
		attempts: attempts,
	}
}

// Check looks up a single task. The local index is consulted first; on a
// miss the checker decides. Without a checker a miss is a clean zero result.
func (w *Worker) Check(ctx context.Context, task types.Task) types.WorkerResult {
	if w.attempts != nil {
		atomic.AddInt64(w.attempts, 1)
	}

	if w.index.Contains(task.Address) {
		return types.WorkerResult{
			Task: task,
			Result: types.ProviderResult{
				Address:      task.Address,
				TxCount:      1,
				ProviderName: LocalIndexProvider,
			},
		}
	}

	if w.checker == nil {
		res := types.ProviderResult{Address: task.Address, ProviderName: LocalIndexProvider}
		if w.index == nil {
			res.Err = ErrNoSource
		}
		return types.WorkerResult{Task: task, Result: res}
	}

	return types.WorkerResult{Task: task, Result: w.checker.CheckAddress(ctx, task.Address)}
}

// Run processes tasks until the channel is closed, sending one result per
// task. ctx is passed to every lookup unchanged.
func (w *Worker) Run(ctx context.Context, tasks <-chan types.Task, results chan<- types.WorkerResult) {
	for task := range tasks {
		results <- w.Check(ctx, task)
	}
}
