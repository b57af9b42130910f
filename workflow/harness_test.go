package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

// fakeRepo records every persistence call so tests can assert on the exact
// sequence of state transitions without a database.
type fakeRepo struct {
	mu sync.Mutex

	createdWorkflows []*store.Workflow
	createdSteps     []*store.WorkflowStep
	running          []string
	outcomes         map[string]recordedOutcome
	finishes         []finishCall

	createErr error
	markErr   error
	recordErr error
	finishErr error

	workflow *store.Workflow
	steps    []store.WorkflowStep
	getErr   error
	headers  []store.WorkflowHeader
	deleted  []string
}

type recordedOutcome struct {
	status        types.StepStatus
	response      string
	toolsUsed     []string
	executionTime float64
	errorMessage  string
}

type finishCall struct {
	workflowID   string
	status       types.WorkflowStatus
	totalSeconds float64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{outcomes: make(map[string]recordedOutcome)}
}

func (f *fakeRepo) CreateWorkflow(ctx context.Context, wf *store.Workflow, steps []*store.WorkflowStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.createdWorkflows = append(f.createdWorkflows, wf)
	f.createdSteps = append(f.createdSteps, steps...)
	return nil
}

func (f *fakeRepo) MarkStepRunning(ctx context.Context, stepID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.running = append(f.running, stepID)
	return nil
}

func (f *fakeRepo) RecordStepOutcome(ctx context.Context, stepID string, status types.StepStatus, response string, toolsUsed []string, executionTime float64, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.outcomes[stepID] = recordedOutcome{
		status:        status,
		response:      response,
		toolsUsed:     toolsUsed,
		executionTime: executionTime,
		errorMessage:  errorMessage,
	}
	return nil
}

func (f *fakeRepo) FinishWorkflow(ctx context.Context, workflowID string, status types.WorkflowStatus, totalSeconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finishErr != nil {
		return f.finishErr
	}
	f.finishes = append(f.finishes, finishCall{workflowID: workflowID, status: status, totalSeconds: totalSeconds})
	return nil
}

func (f *fakeRepo) GetWorkflow(ctx context.Context, workflowID, ownerID string) (*store.Workflow, []store.WorkflowStep, error) {
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	return f.workflow, f.steps, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]store.WorkflowHeader, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if limit < len(f.headers) {
		return f.headers[:limit], nil
	}
	return f.headers, nil
}

func (f *fakeRepo) DeleteWorkflow(ctx context.Context, workflowID, ownerID string) error {
	if f.getErr != nil {
		return f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, workflowID)
	return nil
}

func (f *fakeRepo) outcomeFor(stepID string) (recordedOutcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.outcomes[stepID]
	return out, ok
}

// fakeInvoker answers per agent id and tracks call order, messages, and the
// peak number of in-flight calls for concurrency assertions.
type fakeInvoker struct {
	mu sync.Mutex

	responses map[string]*Invocation
	errs      map[string]error
	delay     time.Duration

	calls    []invokeCall
	inFlight int
	peak     int
}

type invokeCall struct {
	agentID        string
	message        string
	callerID       string
	conversationID string
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		responses: make(map[string]*Invocation),
		errs:      make(map[string]error),
	}
}

func (f *fakeInvoker) Invoke(ctx context.Context, agentID, message, callerID, conversationID string) (*Invocation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, invokeCall{agentID: agentID, message: message, callerID: callerID, conversationID: conversationID})
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	f.inFlight--
	err := f.errs[agentID]
	resp := f.responses[agentID]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}
	return &Invocation{Response: "response from " + agentID}, nil
}

func (f *fakeInvoker) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := make([]string, len(f.calls))
	for i, c := range f.calls {
		msgs[i] = c.message
	}
	return msgs
}

// fakeDirectory resolves agents from a fixed map.
type fakeDirectory struct {
	agents map[string]*AgentInfo
	errs   map[string]error
}

func newFakeDirectory(agents ...*AgentInfo) *fakeDirectory {
	d := &fakeDirectory{
		agents: make(map[string]*AgentInfo),
		errs:   make(map[string]error),
	}
	for _, a := range agents {
		d.agents[a.ID] = a
	}
	return d
}

func (f *fakeDirectory) Resolve(ctx context.Context, agentID, ownerID string) (*AgentInfo, error) {
	if err, ok := f.errs[agentID]; ok {
		return nil, err
	}
	info, ok := f.agents[agentID]
	if !ok {
		return nil, types.NewNotFoundError("agent " + agentID + " not found")
	}
	return info, nil
}

func activeAgent(id string) *AgentInfo {
	return &AgentInfo{ID: id, Name: id, Status: "active", Active: true}
}

func pendingStep(id, name, agentID, message string, dependsOn ...string) *store.WorkflowStep {
	return &store.WorkflowStep{
		ID:         id,
		WorkflowID: "wf-1",
		StepName:   name,
		AgentID:    agentID,
		Message:    message,
		Status:     types.StepPending,
		DependsOn:  dependsOn,
	}
}
