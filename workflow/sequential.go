package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

// SequentialScheduler executes steps one at a time in declaration order.
// Declaration order is the caller's intended order; dependencies are
// assumed to respect it for the default use case.
type SequentialScheduler struct {
	executor *StepExecutor
	logger   *zap.Logger
}

// NewSequentialScheduler creates a sequential scheduler.
func NewSequentialScheduler(executor *StepExecutor, logger *zap.Logger) *SequentialScheduler {
	return &SequentialScheduler{
		executor: executor,
		logger:   logger.With(zap.String("component", "sequential_scheduler")),
	}
}

// Run executes the steps and returns their results in execution order.
//
// A step whose dependency result is missing from the accumulated map is
// skipped without invoking the agent; its skip is persisted immediately.
// Skipped steps do not enter the results map, so steps depending on them
// skip in turn. A later step never starts before the earlier step's
// terminal status is recorded.
func (s *SequentialScheduler) Run(ctx context.Context, steps []*store.WorkflowStep, ownerID, conversationID string, repo Repository) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	byName := make(map[string]StepResult, len(steps))

	for _, step := range steps {
		var missing []string
		for _, dep := range step.DependsOn {
			if _, ok := byName[dep]; !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			skipped, err := s.skipStep(ctx, step, missing, repo)
			if err != nil {
				return nil, err
			}
			results = append(results, skipped)
			continue
		}

		enhanced := EnhanceMessage(step.Message, step.DependsOn, byName)
		result, err := s.executor.Execute(ctx, step, enhanced, ownerID, conversationID, repo)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
		byName[step.StepName] = result
	}

	return results, nil
}

// skipStep records a skipped step with an error message naming the missing
// dependencies.
func (s *SequentialScheduler) skipStep(ctx context.Context, step *store.WorkflowStep, missing []string, repo Repository) (StepResult, error) {
	reason := fmt.Sprintf("Dependencies not met: %v", missing)

	s.logger.Warn("skipping step",
		zap.String("step", step.StepName),
		zap.Strings("missing_dependencies", missing),
	)

	if err := repo.RecordStepOutcome(ctx, step.ID, types.StepSkipped, "", nil, 0, reason); err != nil {
		return StepResult{}, types.NewOrchestrationError(
			fmt.Sprintf("failed to persist skip of step %s", step.StepName)).WithCause(err)
	}

	return StepResult{
		StepName:  step.StepName,
		AgentID:   step.AgentID,
		Message:   step.Message,
		Status:    types.StepSkipped,
		Error:     reason,
		Timestamp: time.Now().UTC(),
	}, nil
}
