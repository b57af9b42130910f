package types

// WorkflowStatus is the lifecycle status of a workflow run.
type WorkflowStatus string

const (
	// WorkflowRunning is set when orchestration starts.
	WorkflowRunning WorkflowStatus = "running"
	// WorkflowCompleted means every step succeeded.
	WorkflowCompleted WorkflowStatus = "completed"
	// WorkflowFailed means every step errored, or the run itself failed.
	WorkflowFailed WorkflowStatus = "failed"
	// WorkflowPartialSuccess means a mix of outcomes: at least one error or
	// skip alongside at least one success.
	WorkflowPartialSuccess WorkflowStatus = "partial_success"
)

// Terminal reports whether the status is a terminal workflow state.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowCompleted || s == WorkflowFailed || s == WorkflowPartialSuccess
}

// StepStatus is the lifecycle status of a single workflow step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepSuccess StepStatus = "success"
	StepError   StepStatus = "error"
	StepSkipped StepStatus = "skipped"
)

// Terminal reports whether the status is a terminal step state.
func (s StepStatus) Terminal() bool {
	return s == StepSuccess || s == StepError || s == StepSkipped
}
