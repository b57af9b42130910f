package workflow

import (
	"fmt"
	"strings"

	"github.com/BaSui01/agentweave/types"
)

// EnhanceMessage produces the message actually sent to an agent: the step's
// original message followed by one context block per dependency, in
// depends_on declaration order.
//
// A succeeded dependency contributes its response text; a dependency with
// any other status contributes a warning naming it, so downstream agents
// see upstream failure without the orchestrator aborting. Steps without
// dependencies pass their message through unchanged.
func EnhanceMessage(message string, dependsOn []string, results map[string]StepResult) string {
	if len(dependsOn) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString(message)
	for _, dep := range dependsOn {
		result, ok := results[dep]
		if !ok {
			continue
		}
		if result.Status == types.StepSuccess {
			fmt.Fprintf(&b, "\n\nContext from %s: %s", dep, result.Response)
		} else {
			fmt.Fprintf(&b, "\n\nWarning: %s failed with status %s", dep, result.Status)
		}
	}
	return b.String()
}
