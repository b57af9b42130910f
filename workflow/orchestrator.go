package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/internal/metrics"
	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

// Orchestrator is the façade over the engine: it validates a definition,
// persists the workflow skeleton, selects a scheduler, runs it, aggregates
// the outcome, and persists the terminal state.
//
// State machine per run: created -> running -> {completed | partial_success
// | failed}. The terminal transition happens exactly once.
type Orchestrator struct {
	repo       Repository
	validator  *Validator
	sequential *SequentialScheduler
	parallel   *ParallelScheduler
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// Options carries the orchestrator's collaborators.
type Options struct {
	Repository Repository
	Directory  AgentDirectory
	Invoker    Invoker
	// Scope hands parallel workers their own repository handles. Nil means
	// workers share the orchestrator's repository.
	Scope   ScopeFunc
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// NewOrchestrator wires the engine together.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	executor := NewStepExecutor(opts.Invoker, opts.Metrics, logger)

	return &Orchestrator{
		repo:       opts.Repository,
		validator:  NewValidator(opts.Directory, logger),
		sequential: NewSequentialScheduler(executor, logger),
		parallel:   NewParallelScheduler(executor, opts.Scope, logger),
		metrics:    opts.Metrics,
		logger:     logger.With(zap.String("component", "orchestrator")),
	}
}

// ExecuteWorkflow validates and runs a workflow definition for the given
// owner. Validation failures return before any record is created. Scheduler
// failures mark the workflow failed, then surface as ORCHESTRATION errors.
// Per-step agent failures never abort the run; they are visible in the
// summary at step granularity.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, def *Definition, ownerID string) (*Summary, error) {
	if err := o.validator.Validate(ctx, def, ownerID); err != nil {
		return nil, err
	}

	start := time.Now()
	workflowID := uuid.NewString()
	conversationID := "workflow_" + workflowID

	wf := &store.Workflow{
		ID:             workflowID,
		Name:           def.Name,
		Description:    def.Name,
		ConversationID: conversationID,
		UserID:         ownerID,
		Status:         types.WorkflowRunning,
	}

	resolved := def.ResolvedSteps()
	steps := make([]*store.WorkflowStep, len(resolved))
	for i, sd := range resolved {
		steps[i] = &store.WorkflowStep{
			ID:           uuid.NewString(),
			WorkflowID:   workflowID,
			StepName:     sd.StepName,
			AgentID:      sd.AgentID,
			Message:      sd.Message,
			Status:       types.StepPending,
			DependsOn:    sd.DependsOn,
			PassResultTo: sd.PassResultTo,
		}
	}

	if err := o.repo.CreateWorkflow(ctx, wf, steps); err != nil {
		return nil, types.NewOrchestrationError("failed to persist workflow skeleton").WithCause(err)
	}

	mode := "sequential"
	if def.Parallel {
		mode = "parallel"
	}
	o.logger.Info("workflow started",
		zap.String("workflow_id", workflowID),
		zap.String("name", def.Name),
		zap.String("mode", mode),
		zap.Int("steps", len(steps)),
	)

	var results []StepResult
	var runErr error
	if def.Parallel {
		results, runErr = o.parallel.Run(ctx, steps, ownerID, conversationID, o.repo)
	} else {
		results, runErr = o.sequential.Run(ctx, steps, ownerID, conversationID, o.repo)
	}

	elapsed := time.Since(start)

	if runErr != nil {
		// Best-effort terminal write, then surface the scheduler failure.
		if err := o.repo.FinishWorkflow(ctx, workflowID, types.WorkflowFailed, elapsed.Seconds()); err != nil {
			o.logger.Error("failed to mark workflow failed",
				zap.String("workflow_id", workflowID),
				zap.Error(err),
			)
		}
		o.metrics.RecordWorkflowExecution(string(types.WorkflowFailed), mode, elapsed)
		o.logger.Error("workflow execution failed",
			zap.String("workflow_id", workflowID),
			zap.Duration("elapsed", elapsed),
			zap.Error(runErr),
		)
		if _, ok := runErr.(*types.Error); ok {
			return nil, runErr
		}
		return nil, types.NewOrchestrationError("workflow execution failed").WithCause(runErr)
	}

	status := AggregateStatus(results)
	total := time.Since(start)

	if err := o.repo.FinishWorkflow(ctx, workflowID, status, total.Seconds()); err != nil {
		return nil, types.NewOrchestrationError("failed to persist workflow result").WithCause(err)
	}

	o.metrics.RecordWorkflowExecution(string(status), mode, total)
	o.logger.Info("workflow finished",
		zap.String("workflow_id", workflowID),
		zap.String("status", string(status)),
		zap.Duration("elapsed", total),
	)

	return &Summary{
		WorkflowID:         workflowID,
		Name:               def.Name,
		ConversationID:     conversationID,
		Steps:              results,
		TotalExecutionTime: total.Seconds(),
		Status:             status,
		Timestamp:          time.Now().UTC(),
	}, nil
}

// GetWorkflowDetails returns the full summary of a persisted workflow for
// its owner, steps in creation (declaration) order.
func (o *Orchestrator) GetWorkflowDetails(ctx context.Context, workflowID, ownerID string) (*Summary, error) {
	wf, steps, err := o.repo.GetWorkflow(ctx, workflowID, ownerID)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, len(steps))
	for i, step := range steps {
		results[i] = StepResult{
			StepName:      step.StepName,
			AgentID:       step.AgentID,
			Message:       step.Message,
			Response:      step.Response,
			ToolsUsed:     step.ToolsUsed,
			ExecutionTime: step.ExecutionTime,
			Status:        step.Status,
			Error:         step.ErrorMessage,
			Timestamp:     step.CreatedAt,
		}
	}

	return &Summary{
		WorkflowID:         wf.ID,
		Name:               wf.Name,
		ConversationID:     wf.ConversationID,
		Steps:              results,
		TotalExecutionTime: wf.TotalExecutionTime,
		Status:             wf.Status,
		Timestamp:          wf.CreatedAt,
	}, nil
}

// GetWorkflowHistory lists the owner's workflows by recency.
func (o *Orchestrator) GetWorkflowHistory(ctx context.Context, ownerID string, limit int) ([]store.WorkflowHeader, error) {
	if limit <= 0 {
		limit = 50
	}
	return o.repo.ListByOwner(ctx, ownerID, limit)
}

// DeleteWorkflow removes a persisted workflow and its steps for the owner.
func (o *Orchestrator) DeleteWorkflow(ctx context.Context, workflowID, ownerID string) error {
	if err := o.repo.DeleteWorkflow(ctx, workflowID, ownerID); err != nil {
		return err
	}
	o.logger.Info("workflow deleted", zap.String("workflow_id", workflowID))
	return nil
}

// GetWorkflowStatus returns a progress view suitable for polling while a
// workflow runs.
func (o *Orchestrator) GetWorkflowStatus(ctx context.Context, workflowID, ownerID string) (*StatusReport, error) {
	wf, steps, err := o.repo.GetWorkflow(ctx, workflowID, ownerID)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		WorkflowID: wf.ID,
		Status:     wf.Status,
		TotalSteps: len(steps),
		TotalTime:  wf.TotalExecutionTime,
	}
	for _, step := range steps {
		switch step.Status {
		case types.StepSuccess:
			report.CompletedCount++
		case types.StepError:
			report.FailedCount++
		}
	}
	return report, nil
}
