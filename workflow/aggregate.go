package workflow

import "github.com/BaSui01/agentweave/types"

// AggregateStatus reduces the full ordered list of step results to one
// workflow status. It is a pure function of the status multiset; which
// particular step failed never matters.
//
// Priority order: no results -> failed; all error -> failed; any error in a
// mix -> partial_success; all success -> completed; anything else (for
// example skips without errors) -> partial_success.
func AggregateStatus(results []StepResult) types.WorkflowStatus {
	if len(results) == 0 {
		return types.WorkflowFailed
	}

	var successCount, errorCount int
	for _, r := range results {
		switch r.Status {
		case types.StepSuccess:
			successCount++
		case types.StepError:
			errorCount++
		}
	}

	switch {
	case errorCount == len(results):
		return types.WorkflowFailed
	case errorCount > 0:
		return types.WorkflowPartialSuccess
	case successCount == len(results):
		return types.WorkflowCompleted
	default:
		return types.WorkflowPartialSuccess
	}
}
