package workflow

import (
	"time"

	"github.com/BaSui01/agentweave/types"
)

// StepResult is the in-memory outcome of one step execution. It feeds
// dependency-context enhancement of later steps and the final summary.
type StepResult struct {
	StepName string `json:"step_name"`
	AgentID  string `json:"agent_id"`
	// Message is the message actually sent, after dependency-context
	// enhancement. The persisted step record keeps the original.
	Message       string           `json:"message"`
	Response      string           `json:"response"`
	ToolsUsed     []string         `json:"tools_used"`
	ExecutionTime float64          `json:"execution_time"`
	Status        types.StepStatus `json:"status"`
	Error         string           `json:"error,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Summary is the workflow-level result returned to callers: identity,
// per-step outcomes in execution order, and the aggregate status.
type Summary struct {
	WorkflowID         string               `json:"workflow_id"`
	Name               string               `json:"workflow_name"`
	ConversationID     string               `json:"conversation_id"`
	Steps              []StepResult         `json:"steps"`
	TotalExecutionTime float64              `json:"total_execution_time"`
	Status             types.WorkflowStatus `json:"status"`
	Timestamp          time.Time            `json:"timestamp"`
}

// StatusReport is the lightweight progress view for polling callers.
type StatusReport struct {
	WorkflowID     string               `json:"workflow_id"`
	Status         types.WorkflowStatus `json:"status"`
	CompletedCount int                  `json:"completed_count"`
	FailedCount    int                  `json:"failed_count"`
	TotalSteps     int                  `json:"total_steps"`
	TotalTime      float64              `json:"total_time"`
}
