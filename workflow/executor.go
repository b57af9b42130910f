package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/internal/metrics"
	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

// StepExecutor runs one step: it marks the persisted record running, makes
// exactly one call to the agent invocation service, measures wall-clock
// time around that call, and writes the terminal state back.
//
// Invocation failures are absorbed into the step's error status; the only
// errors Execute returns are persistence failures, which are fatal to the
// run at the orchestrator level.
type StepExecutor struct {
	invoker Invoker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewStepExecutor creates a step executor. The collector may be nil.
func NewStepExecutor(invoker Invoker, collector *metrics.Collector, logger *zap.Logger) *StepExecutor {
	return &StepExecutor{
		invoker: invoker,
		metrics: collector,
		logger:  logger.With(zap.String("component", "step_executor")),
	}
}

// Execute runs a single step with the given enhanced message and persists
// both the running transition and the terminal outcome through repo.
func (e *StepExecutor) Execute(ctx context.Context, step *store.WorkflowStep, enhancedMessage, ownerID, conversationID string, repo Repository) (StepResult, error) {
	if err := repo.MarkStepRunning(ctx, step.ID); err != nil {
		return StepResult{}, types.NewOrchestrationError(
			fmt.Sprintf("failed to mark step %s running", step.StepName)).WithCause(err)
	}

	start := time.Now()
	invocation, invokeErr := e.invoker.Invoke(ctx, step.AgentID, enhancedMessage, ownerID, conversationID)
	elapsed := time.Since(start)

	result := StepResult{
		StepName:      step.StepName,
		AgentID:       step.AgentID,
		Message:       enhancedMessage,
		ExecutionTime: elapsed.Seconds(),
		Timestamp:     time.Now().UTC(),
	}

	if invokeErr != nil {
		// A cancelled or failed invocation becomes an error result, never
		// a silently dropped step.
		result.Status = types.StepError
		result.Error = invokeErr.Error()
		e.logger.Error("step execution failed",
			zap.String("step", step.StepName),
			zap.String("agent_id", step.AgentID),
			zap.Duration("elapsed", elapsed),
			zap.Error(invokeErr),
		)
	} else {
		result.Status = types.StepSuccess
		result.Response = invocation.Response
		result.ToolsUsed = invocation.ToolsUsed
		e.logger.Debug("step executed",
			zap.String("step", step.StepName),
			zap.String("agent_id", step.AgentID),
			zap.Duration("elapsed", elapsed),
			zap.Int("tools_used", len(invocation.ToolsUsed)),
		)
	}

	e.metrics.RecordStepExecution(string(result.Status), elapsed)

	if err := repo.RecordStepOutcome(ctx, step.ID, result.Status, result.Response, result.ToolsUsed, result.ExecutionTime, result.Error); err != nil {
		return StepResult{}, types.NewOrchestrationError(
			fmt.Sprintf("failed to persist outcome of step %s", step.StepName)).WithCause(err)
	}

	return result, nil
}
