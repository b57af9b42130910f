package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BaSui01/agentweave/types"
)

// AgentStatus is the operational state of an agent resource.
type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentInactive AgentStatus = "inactive"
	AgentError    AgentStatus = "error"
)

// StringList stores a []string as a JSON text column so the same schema
// works on postgres and sqlite.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Agent is an agent resource owned by a user. The conversational backend
// that answers on behalf of an agent lives outside this service; the row
// only carries the identity and operational state the orchestrator needs.
type Agent struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)"`
	UserID    string      `gorm:"index;not null;type:varchar(36)"`
	Name      string      `gorm:"not null"`
	Status    AgentStatus `gorm:"type:varchar(16);not null;default:active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Workflow is one execution run of a named, ordered set of steps.
type Workflow struct {
	ID                 string               `gorm:"primaryKey;type:varchar(36)"`
	Name               string               `gorm:"not null"`
	Description        string
	ConversationID     string               `gorm:"index;type:varchar(64)"`
	UserID             string               `gorm:"index;not null;type:varchar(36)"`
	Status             types.WorkflowStatus `gorm:"type:varchar(20);not null"`
	TotalExecutionTime float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// WorkflowStep is one persisted unit of work within a workflow. Rows are
// created in pending state before execution begins and mutated in place as
// the step transitions pending -> running -> {success|error|skipped}.
// Steps are deleted only through their parent workflow (cascade).
type WorkflowStep struct {
	ID            string           `gorm:"primaryKey;type:varchar(36)"`
	WorkflowID    string           `gorm:"index;not null;type:varchar(36)"`
	StepName      string           `gorm:"not null"`
	AgentID       string           `gorm:"index;not null;type:varchar(36)"`
	Message       string           `gorm:"type:text"`
	Response      string           `gorm:"type:text"`
	ToolsUsed     StringList       `gorm:"type:text"`
	ExecutionTime float64
	Status        types.StepStatus `gorm:"type:varchar(16);not null"`
	ErrorMessage  string           `gorm:"type:text"`
	DependsOn     StringList       `gorm:"type:text"`
	PassResultTo  StringList       `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WorkflowHeader is a history row: workflow fields plus the step count,
// selected in one query for recency-ordered listings.
type WorkflowHeader struct {
	ID                 string               `json:"workflow_id"`
	Name               string               `json:"name"`
	Status             types.WorkflowStatus `json:"status"`
	TotalExecutionTime float64              `json:"total_execution_time"`
	StepCount          int                  `json:"step_count"`
	ConversationID     string               `json:"conversation_id"`
	CreatedAt          time.Time            `json:"created_at"`
}
