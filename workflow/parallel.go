package workflow

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/agentweave/store"
)

// ParallelScheduler executes steps level by level: steps whose dependencies
// are all satisfied form a level and run concurrently; the next level does
// not start until every step of the current one has a terminal status.
//
// Workers never touch shared scheduling state. Each worker writes into its
// own slot of a preallocated slice and acquires its own scoped repository
// handle; the merge of a finished level into the shared results map is the
// only synchronization barrier.
type ParallelScheduler struct {
	executor *StepExecutor
	scope    ScopeFunc
	logger   *zap.Logger
}

// NewParallelScheduler creates a level-parallel scheduler. scope hands each
// worker its own repository handle; nil reuses the shared repository.
func NewParallelScheduler(executor *StepExecutor, scope ScopeFunc, logger *zap.Logger) *ParallelScheduler {
	return &ParallelScheduler{
		executor: executor,
		scope:    scope,
		logger:   logger.With(zap.String("component", "parallel_scheduler")),
	}
}

// Run executes the steps and returns their results in execution order:
// level by level, declaration order within a level.
func (p *ParallelScheduler) Run(ctx context.Context, steps []*store.WorkflowStep, ownerID, conversationID string, repo Repository) ([]StepResult, error) {
	levels, err := groupByLevel(steps)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(steps))
	byName := make(map[string]StepResult, len(steps))

	for i, level := range levels {
		p.logger.Debug("executing dependency level",
			zap.Int("level", i),
			zap.Int("steps", len(level)),
		)

		// Enhancement is computed before fan-out, from the results of
		// previous levels only; siblings cannot observe each other.
		levelResults := make([]StepResult, len(level))
		g, gctx := errgroup.WithContext(ctx)

		for j, step := range level {
			g.Go(func() error {
				workerRepo := repo
				if p.scope != nil {
					workerRepo = p.scope(gctx)
				}
				enhanced := EnhanceMessage(step.Message, step.DependsOn, byName)
				result, err := p.executor.Execute(gctx, step, enhanced, ownerID, conversationID, workerRepo)
				if err != nil {
					return err
				}
				levelResults[j] = result
				return nil
			})
		}

		// Level barrier: suspend until every worker reaches a terminal
		// status, then merge under a single logical writer.
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, result := range levelResults {
			results = append(results, result)
			byName[result.StepName] = result
		}
	}

	return results, nil
}
