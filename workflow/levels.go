package workflow

import (
	"fmt"
	"strings"

	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
)

// groupByLevel partitions steps into topological generations: level 0 holds
// steps with no dependencies, level k holds steps whose dependencies are all
// contained in levels < k. Steps inside one level have no ordering
// constraint between each other.
//
// An empty level while steps remain unassigned means a cycle or dangling
// dependency survived validation; that is an orchestration error, not a
// reason to loop forever.
func groupByLevel(steps []*store.WorkflowStep) ([][]*store.WorkflowStep, error) {
	assigned := make(map[string]bool, len(steps))
	var levels [][]*store.WorkflowStep

	for len(assigned) < len(steps) {
		var level []*store.WorkflowStep
		for _, step := range steps {
			if assigned[step.StepName] {
				continue
			}
			ready := true
			for _, dep := range step.DependsOn {
				if !assigned[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, step)
			}
		}

		if len(level) == 0 {
			remaining := make([]string, 0, len(steps)-len(assigned))
			for _, step := range steps {
				if !assigned[step.StepName] {
					remaining = append(remaining, step.StepName)
				}
			}
			return nil, types.NewOrchestrationError(fmt.Sprintf(
				"cannot group steps by dependency level, unresolvable steps: %s",
				strings.Join(remaining, ", "),
			))
		}

		for _, step := range level {
			assigned[step.StepName] = true
		}
		levels = append(levels, level)
	}

	return levels, nil
}
