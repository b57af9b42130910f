package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/agentweave/types"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	repo := NewRepository(db, zap.NewNop())
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func seedAgent(t *testing.T, repo *Repository, id, ownerID string, status AgentStatus) {
	t.Helper()
	require.NoError(t, repo.CreateAgent(context.Background(), &Agent{
		ID:     id,
		UserID: ownerID,
		Name:   "agent " + id,
		Status: status,
	}))
}

func seedWorkflow(t *testing.T, repo *Repository, id, ownerID string, stepIDs ...string) []*WorkflowStep {
	t.Helper()

	steps := make([]*WorkflowStep, len(stepIDs))
	for i, sid := range stepIDs {
		steps[i] = &WorkflowStep{
			ID:         sid,
			WorkflowID: id,
			StepName:   fmt.Sprintf("step_%d", i+1),
			AgentID:    "a1",
			Message:    "m",
			Status:     types.StepPending,
		}
	}

	require.NoError(t, repo.CreateWorkflow(context.Background(), &Workflow{
		ID:             id,
		Name:           "wf " + id,
		ConversationID: "workflow_" + id,
		UserID:         ownerID,
		Status:         types.WorkflowRunning,
	}, steps))
	return steps
}

func TestRepository_GetAgent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedAgent(t, repo, "a1", "owner-1", AgentActive)

	t.Run("found", func(t *testing.T) {
		agent, err := repo.GetAgent(ctx, "a1", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "a1", agent.ID)
		assert.Equal(t, AgentActive, agent.Status)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetAgent(ctx, "nope", "owner-1")
		require.Error(t, err)
		assert.True(t, types.IsNotFound(err))
	})

	t.Run("wrong owner", func(t *testing.T) {
		_, err := repo.GetAgent(ctx, "a1", "someone-else")
		require.Error(t, err)
		assert.True(t, types.IsNotFound(err), "ownership scoping must look like absence")
	})
}

func TestRepository_CreateWorkflowAtomic(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	steps := []*WorkflowStep{
		{ID: "s1", WorkflowID: "wf-1", StepName: "a", AgentID: "a1", Status: types.StepPending},
		// Duplicate primary key forces the second insert to fail.
		{ID: "s1", WorkflowID: "wf-1", StepName: "b", AgentID: "a1", Status: types.StepPending},
	}

	err := repo.CreateWorkflow(ctx, &Workflow{
		ID: "wf-1", Name: "doomed", UserID: "owner-1", Status: types.WorkflowRunning,
	}, steps)
	require.Error(t, err)

	// The failed transaction left nothing behind.
	_, _, err = repo.GetWorkflow(ctx, "wf-1", "owner-1")
	assert.True(t, types.IsNotFound(err))
}

func TestRepository_StepLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1")

	require.NoError(t, repo.MarkStepRunning(ctx, "s1"))
	_, steps, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, types.StepRunning, steps[0].Status)

	require.NoError(t, repo.RecordStepOutcome(ctx, "s1", types.StepSuccess, "answer", []string{"search", "math"}, 1.5, ""))
	_, steps, err = repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, types.StepSuccess, steps[0].Status)
	assert.Equal(t, "answer", steps[0].Response)
	assert.Equal(t, StringList{"search", "math"}, steps[0].ToolsUsed)
	assert.Equal(t, 1.5, steps[0].ExecutionTime)
	assert.Empty(t, steps[0].ErrorMessage)
}

func TestRepository_RecordSkipOutcome(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1")

	require.NoError(t, repo.RecordStepOutcome(ctx, "s1", types.StepSkipped, "", nil, 0, "Dependencies not met: [upstream]"))

	_, steps, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, types.StepSkipped, steps[0].Status)
	assert.Equal(t, "Dependencies not met: [upstream]", steps[0].ErrorMessage)
	assert.Empty(t, steps[0].ToolsUsed)
}

func TestRepository_FinishWorkflow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1")

	require.NoError(t, repo.FinishWorkflow(ctx, "wf-1", types.WorkflowPartialSuccess, 12.25))

	wf, _, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, types.WorkflowPartialSuccess, wf.Status)
	assert.Equal(t, 12.25, wf.TotalExecutionTime)
}

func TestRepository_GetWorkflow_StepOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Insert with explicit, strictly increasing creation times.
	base := time.Now().Add(-time.Minute).UTC()
	steps := []*WorkflowStep{
		{ID: "s1", WorkflowID: "wf-1", StepName: "first", AgentID: "a1", Status: types.StepPending, CreatedAt: base},
		{ID: "s2", WorkflowID: "wf-1", StepName: "second", AgentID: "a1", Status: types.StepPending, CreatedAt: base.Add(time.Second)},
		{ID: "s3", WorkflowID: "wf-1", StepName: "third", AgentID: "a1", Status: types.StepPending, CreatedAt: base.Add(2 * time.Second)},
	}
	require.NoError(t, repo.CreateWorkflow(ctx, &Workflow{
		ID: "wf-1", Name: "ordered", UserID: "owner-1", Status: types.WorkflowRunning,
	}, steps))

	_, got, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].StepName)
	assert.Equal(t, "second", got[1].StepName)
	assert.Equal(t, "third", got[2].StepName)
}

func TestRepository_GetWorkflow_OwnerScoped(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1")

	_, _, err := repo.GetWorkflow(ctx, "wf-1", "intruder")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestRepository_ListByOwner(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Three workflows for owner-1 with distinct creation times, one for
	// someone else.
	base := time.Now().Add(-time.Hour).UTC()
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("wf-%d", i+1)
		require.NoError(t, repo.CreateWorkflow(ctx, &Workflow{
			ID:        id,
			Name:      "wf " + id,
			UserID:    "owner-1",
			Status:    types.WorkflowCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}, []*WorkflowStep{
			{ID: id + "-s1", WorkflowID: id, StepName: "a", AgentID: "a1", Status: types.StepSuccess},
			{ID: id + "-s2", WorkflowID: id, StepName: "b", AgentID: "a1", Status: types.StepSuccess},
		}))
	}
	seedWorkflow(t, repo, "wf-other", "owner-2", "sx")

	headers, err := repo.ListByOwner(ctx, "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, headers, 3)

	// Newest first, with step counts from the subquery.
	assert.Equal(t, "wf-3", headers[0].ID)
	assert.Equal(t, "wf-1", headers[2].ID)
	for _, h := range headers {
		assert.Equal(t, 2, h.StepCount)
		assert.Equal(t, types.WorkflowCompleted, h.Status)
	}

	limited, err := repo.ListByOwner(ctx, "owner-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.ListByOwner(ctx, "owner-3", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_DeleteWorkflow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1", "s2")

	t.Run("wrong owner", func(t *testing.T) {
		err := repo.DeleteWorkflow(ctx, "wf-1", "intruder")
		require.Error(t, err)
		assert.True(t, types.IsNotFound(err))
	})

	t.Run("removes workflow and steps", func(t *testing.T) {
		require.NoError(t, repo.DeleteWorkflow(ctx, "wf-1", "owner-1"))

		_, _, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
		assert.True(t, types.IsNotFound(err))

		headers, err := repo.ListByOwner(ctx, "owner-1", 10)
		require.NoError(t, err)
		assert.Empty(t, headers)
	})

	t.Run("already gone", func(t *testing.T) {
		err := repo.DeleteWorkflow(ctx, "wf-1", "owner-1")
		require.Error(t, err)
		assert.True(t, types.IsNotFound(err))
	})
}

func TestRepository_WithSession(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1", "s2")

	// Scoped handles write through to the same database.
	scoped := repo.WithSession(ctx)
	require.NotSame(t, repo, scoped)
	require.NoError(t, scoped.MarkStepRunning(ctx, "s1"))

	_, steps, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, types.StepRunning, steps[0].Status)
	assert.Equal(t, types.StepPending, steps[1].Status)
}

func TestStringList_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedWorkflow(t, repo, "wf-1", "owner-1", "s1")

	require.NoError(t, repo.RecordStepOutcome(ctx, "s1", types.StepSuccess, "ok", []string{"tool with spaces", `quo"ted`}, 0.1, ""))

	_, steps, err := repo.GetWorkflow(ctx, "wf-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, StringList{"tool with spaces", `quo"ted`}, steps[0].ToolsUsed)
}

func TestStringList_NilValue(t *testing.T) {
	var l StringList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var scanned StringList
	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)
	require.NoError(t, scanned.Scan("[]"))
	assert.Empty(t, scanned)
}
