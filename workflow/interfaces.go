package workflow

import (
	"context"

	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

// Repository is the persistence contract the engine requires. Implemented
// by store.Repository; faked in tests.
type Repository interface {
	// CreateWorkflow persists the workflow skeleton and its pending steps
	// atomically before execution begins.
	CreateWorkflow(ctx context.Context, wf *store.Workflow, steps []*store.WorkflowStep) error
	// MarkStepRunning transitions a step to running before its agent call.
	MarkStepRunning(ctx context.Context, stepID string) error
	// RecordStepOutcome writes a step's terminal state.
	RecordStepOutcome(ctx context.Context, stepID string, status types.StepStatus, response string, toolsUsed []string, executionTime float64, errorMessage string) error
	// FinishWorkflow writes the workflow's terminal status and total time.
	FinishWorkflow(ctx context.Context, workflowID string, status types.WorkflowStatus, totalSeconds float64) error
	// GetWorkflow loads a workflow and its steps for the given owner.
	GetWorkflow(ctx context.Context, workflowID, ownerID string) (*store.Workflow, []store.WorkflowStep, error)
	// ListByOwner lists the owner's workflows by recency.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]store.WorkflowHeader, error)
	// DeleteWorkflow removes a workflow and its steps for the given owner.
	DeleteWorkflow(ctx context.Context, workflowID, ownerID string) error
}

// ScopeFunc hands out a repository bound to its own scoped resource handle
// for one parallel worker. A nil ScopeFunc reuses the shared repository.
type ScopeFunc func(ctx context.Context) Repository

// AgentInfo is what the validator needs to know about a resolved agent.
type AgentInfo struct {
	ID     string
	Name   string
	Status string
	Active bool
}

// AgentDirectory resolves (agent id, owner) pairs to operational state.
// Resolution failures surface as types.Error NOT_FOUND.
type AgentDirectory interface {
	Resolve(ctx context.Context, agentID, ownerID string) (*AgentInfo, error)
}

// Invocation is the agent invocation service's answer to one message.
type Invocation struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used"`
}

// Invoker is the opaque agent invocation service. A single call per step;
// failures are opaque errors the step executor absorbs. Safe to call with
// an empty conversation id, in which case the service generates one.
type Invoker interface {
	Invoke(ctx context.Context, agentID, message, callerID, conversationID string) (*Invocation, error)
}
