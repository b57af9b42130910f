package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/types"
)

// Validator is the structural gate a workflow definition must pass before
// any side effect. It produces nothing on success; on failure it returns a
// types.Error with code VALIDATION and the caller proceeds no further.
type Validator struct {
	directory AgentDirectory
	logger    *zap.Logger
}

// NewValidator creates a validator backed by the given agent directory.
func NewValidator(directory AgentDirectory, logger *zap.Logger) *Validator {
	return &Validator{
		directory: directory,
		logger:    logger.With(zap.String("component", "workflow_validator")),
	}
}

// Validate checks the definition for the requesting owner. Step names are
// defaulted positionally before uniqueness and dependency checks so that
// references to default names resolve deterministically.
func (v *Validator) Validate(ctx context.Context, def *Definition, ownerID string) error {
	if len(def.Steps) == 0 {
		return types.NewValidationError("workflow must have at least one step")
	}
	if len(def.Steps) > MaxSteps {
		return types.NewValidationError("workflow cannot have more than %d steps", MaxSteps)
	}

	steps := def.ResolvedSteps()

	// Agent resolution is cached per definition; the same agent may back
	// several steps.
	resolved := make(map[string]*AgentInfo, len(steps))
	for _, step := range steps {
		if strings.TrimSpace(step.Message) == "" {
			return types.NewValidationError("step message cannot be empty for agent %s", step.AgentID)
		}

		info, ok := resolved[step.AgentID]
		if !ok {
			var err error
			info, err = v.directory.Resolve(ctx, step.AgentID, ownerID)
			if err != nil {
				if types.IsNotFound(err) {
					return types.NewValidationError("agent %s not found or not accessible", step.AgentID)
				}
				return err
			}
			resolved[step.AgentID] = info
		}
		if !info.Active {
			return types.NewValidationError("agent %s is not active (status: %s)", step.AgentID, info.Status)
		}
	}

	names := make(map[string]bool, len(steps))
	for _, step := range steps {
		if names[step.StepName] {
			return types.NewValidationError("step names must be unique, duplicate: %s", step.StepName)
		}
		names[step.StepName] = true
	}

	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if !names[dep] {
				return types.NewValidationError("dependency %q of step %q not found in workflow steps", dep, step.StepName)
			}
			if dep == step.StepName {
				return types.NewValidationError("step %q cannot depend on itself", step.StepName)
			}
		}
	}

	if HasCycle(DependencyMap(steps)) {
		return types.NewValidationError("circular dependencies detected in workflow")
	}

	v.logger.Debug("workflow definition validated",
		zap.String("workflow", def.Name),
		zap.Int("steps", len(steps)),
		zap.Bool("parallel", def.Parallel),
	)
	return nil
}
