package workflow

import "fmt"

// MaxSteps is the maximum number of steps a single workflow may declare.
const MaxSteps = 50

// StepDefinition declares one unit of work: a message delegated to one
// agent, optionally gated on named prerequisite steps.
type StepDefinition struct {
	// AgentID references an agent resource owned by the caller.
	AgentID string `json:"agent_id"`
	// Message is the text sent to the agent, before dependency-context
	// enhancement.
	Message string `json:"message"`
	// StepName is optional; it defaults to step_<index+1> positionally.
	StepName string `json:"step_name,omitempty"`
	// DependsOn names steps whose results must be available before this
	// step runs.
	DependsOn []string `json:"depends_on,omitempty"`
	// PassResultTo forward-declares consumers of this step's result.
	// Advisory only; scheduling is driven by DependsOn.
	PassResultTo []string `json:"pass_result_to,omitempty"`
}

// Definition is a user-supplied workflow: a name, an ordered sequence of
// steps, and the execution mode.
type Definition struct {
	Name     string           `json:"workflow_name"`
	Steps    []StepDefinition `json:"steps"`
	Parallel bool             `json:"parallel_execution"`
}

// ResolvedSteps returns a copy of the steps with missing names defaulted to
// their strict positional form, step_<i+1> (1-based). Defaulting happens
// before uniqueness and dependency-existence checks so that references to
// default names resolve deterministically.
func (d *Definition) ResolvedSteps() []StepDefinition {
	steps := make([]StepDefinition, len(d.Steps))
	copy(steps, d.Steps)
	for i := range steps {
		if steps[i].StepName == "" {
			steps[i].StepName = DefaultStepName(i)
		}
	}
	return steps
}

// DefaultStepName returns the positional default name for the step at the
// given zero-based index.
func DefaultStepName(index int) string {
	return fmt.Sprintf("step_%d", index+1)
}

// DependencyMap builds the step-name -> direct-dependencies mapping for the
// resolved steps.
func DependencyMap(steps []StepDefinition) map[string][]string {
	deps := make(map[string][]string, len(steps))
	for _, step := range steps {
		deps[step.StepName] = step.DependsOn
	}
	return deps
}
