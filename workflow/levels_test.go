package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

func levelNames(levels [][]*store.WorkflowStep) [][]string {
	out := make([][]string, len(levels))
	for i, level := range levels {
		names := make([]string, len(level))
		for j, step := range level {
			names[j] = step.StepName
		}
		out[i] = names
	}
	return out
}

func TestGroupByLevel(t *testing.T) {
	tests := []struct {
		name  string
		steps []*store.WorkflowStep
		want  [][]string
	}{
		{
			name:  "no steps",
			steps: nil,
			want:  nil,
		},
		{
			name: "independent steps share level zero",
			steps: []*store.WorkflowStep{
				pendingStep("1", "a", "ag", "m"),
				pendingStep("2", "b", "ag", "m"),
				pendingStep("3", "c", "ag", "m"),
			},
			want: [][]string{{"a", "b", "c"}},
		},
		{
			name: "linear chain one step per level",
			steps: []*store.WorkflowStep{
				pendingStep("1", "a", "ag", "m"),
				pendingStep("2", "b", "ag", "m", "a"),
				pendingStep("3", "c", "ag", "m", "b"),
			},
			want: [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name: "diamond",
			steps: []*store.WorkflowStep{
				pendingStep("1", "a", "ag", "m"),
				pendingStep("2", "b", "ag", "m", "a"),
				pendingStep("3", "c", "ag", "m", "a"),
				pendingStep("4", "d", "ag", "m", "b", "c"),
			},
			want: [][]string{{"a"}, {"b", "c"}, {"d"}},
		},
		{
			name: "declaration order preserved within a level",
			steps: []*store.WorkflowStep{
				pendingStep("1", "z", "ag", "m"),
				pendingStep("2", "a", "ag", "m"),
				pendingStep("3", "m", "ag", "m"),
			},
			want: [][]string{{"z", "a", "m"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels, err := groupByLevel(tt.steps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, levelNames(levels))
		})
	}
}

func TestGroupByLevel_UnresolvableSteps(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		steps := []*store.WorkflowStep{
			pendingStep("1", "a", "ag", "m", "b"),
			pendingStep("2", "b", "ag", "m", "a"),
		}
		_, err := groupByLevel(steps)
		require.Error(t, err)
		assert.Equal(t, types.ErrOrchestration, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "a")
		assert.Contains(t, err.Error(), "b")
	})

	t.Run("dangling dependency", func(t *testing.T) {
		steps := []*store.WorkflowStep{
			pendingStep("1", "a", "ag", "m"),
			pendingStep("2", "b", "ag", "m", "ghost"),
		}
		_, err := groupByLevel(steps)
		require.Error(t, err)
		assert.Equal(t, types.ErrOrchestration, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "b")
		assert.NotContains(t, err.Error(), "unresolvable steps: a")
	})
}
