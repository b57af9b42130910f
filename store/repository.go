package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/agentweave/types"
)

// Repository implements the read/write contract the orchestration engine
// requires on top of a GORM database handle.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a repository.
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With(zap.String("component", "store")),
	}
}

// WithSession returns a repository bound to its own GORM session. Parallel
// workers each call this once so that no two concurrently running steps
// share a session.
func (r *Repository) WithSession(ctx context.Context) *Repository {
	return &Repository{
		db:     r.db.Session(&gorm.Session{NewDB: true, Context: ctx}),
		logger: r.logger,
	}
}

// AutoMigrate creates or updates the schema for all entities.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Agent{}, &Workflow{}, &WorkflowStep{})
}

// =============================================================================
// Agents
// =============================================================================

// GetAgent resolves an agent by id and owner.
func (r *Repository) GetAgent(ctx context.Context, agentID, ownerID string) (*Agent, error) {
	var agent Agent
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", agentID, ownerID).
		First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError(fmt.Sprintf("agent %s not found", agentID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agent %s: %w", agentID, err)
	}
	return &agent, nil
}

// CreateAgent inserts an agent record.
func (r *Repository) CreateAgent(ctx context.Context, agent *Agent) error {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}

// =============================================================================
// Workflows
// =============================================================================

// CreateWorkflow inserts the workflow skeleton and all of its pending step
// records in one transaction, so a failed insert leaves no partial state.
func (r *Repository) CreateWorkflow(ctx context.Context, wf *Workflow, steps []*WorkflowStep) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wf).Error; err != nil {
			return err
		}
		for _, step := range steps {
			if err := tx.Create(step).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create workflow %s: %w", wf.ID, err)
	}

	r.logger.Debug("workflow skeleton persisted",
		zap.String("workflow_id", wf.ID),
		zap.Int("steps", len(steps)),
	)
	return nil
}

// MarkStepRunning transitions a step to running so external observers
// polling workflow status mid-run see live progress.
func (r *Repository) MarkStepRunning(ctx context.Context, stepID string) error {
	err := r.db.WithContext(ctx).
		Model(&WorkflowStep{}).
		Where("id = ?", stepID).
		Update("status", types.StepRunning).Error
	if err != nil {
		return fmt.Errorf("failed to mark step %s running: %w", stepID, err)
	}
	return nil
}

// RecordStepOutcome writes a step's terminal status, response, tool usage,
// timing, and error message in one update.
func (r *Repository) RecordStepOutcome(ctx context.Context, stepID string, status types.StepStatus, response string, toolsUsed []string, executionTime float64, errorMessage string) error {
	err := r.db.WithContext(ctx).
		Model(&WorkflowStep{}).
		Where("id = ?", stepID).
		Updates(map[string]any{
			"status":         status,
			"response":       response,
			"tools_used":     StringList(toolsUsed),
			"execution_time": executionTime,
			"error_message":  errorMessage,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record outcome for step %s: %w", stepID, err)
	}
	return nil
}

// FinishWorkflow writes the workflow's terminal status and total wall-clock
// execution time.
func (r *Repository) FinishWorkflow(ctx context.Context, workflowID string, status types.WorkflowStatus, totalSeconds float64) error {
	err := r.db.WithContext(ctx).
		Model(&Workflow{}).
		Where("id = ?", workflowID).
		Updates(map[string]any{
			"status":               status,
			"total_execution_time": totalSeconds,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finish workflow %s: %w", workflowID, err)
	}
	return nil
}

// GetWorkflow loads a workflow and its steps by id and owner. Steps come
// back in creation order, which is declaration order.
func (r *Repository) GetWorkflow(ctx context.Context, workflowID, ownerID string) (*Workflow, []WorkflowStep, error) {
	var wf Workflow
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", workflowID, ownerID).
		First(&wf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, types.NewNotFoundError(fmt.Sprintf("workflow %s not found", workflowID))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}

	var steps []WorkflowStep
	err = r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at").
		Find(&steps).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load steps for workflow %s: %w", workflowID, err)
	}

	return &wf, steps, nil
}

// ListByOwner returns the owner's workflows ordered by recency, newest
// first, with per-workflow step counts.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]WorkflowHeader, error) {
	var rows []WorkflowHeader
	err := r.db.WithContext(ctx).
		Model(&Workflow{}).
		Select("workflows.id, workflows.name, workflows.status, workflows.total_execution_time, workflows.conversation_id, workflows.created_at, (?) AS step_count",
			r.db.Model(&WorkflowStep{}).
				Select("COUNT(*)").
				Where("workflow_steps.workflow_id = workflows.id"),
		).
		Where("workflows.user_id = ?", ownerID).
		Order("workflows.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows for owner %s: %w", ownerID, err)
	}
	return rows, nil
}

// DeleteWorkflow removes a workflow and all of its steps.
func (r *Repository) DeleteWorkflow(ctx context.Context, workflowID, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", workflowID, ownerID).Delete(&Workflow{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete workflow %s: %w", workflowID, result.Error)
		}
		if result.RowsAffected == 0 {
			return types.NewNotFoundError(fmt.Sprintf("workflow %s not found", workflowID))
		}
		// Steps cascade with the parent; sqlite test databases do not
		// always enforce the constraint, so delete explicitly.
		if err := tx.Where("workflow_id = ?", workflowID).Delete(&WorkflowStep{}).Error; err != nil {
			return fmt.Errorf("failed to delete steps for workflow %s: %w", workflowID, err)
		}
		return nil
	})
}
