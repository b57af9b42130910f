package workflow

// color marks for the cycle-detection DFS.
type visitColor uint8

const (
	colorUnvisited visitColor = iota
	colorInProgress
	colorDone
)

// HasCycle reports whether the dependency relation contains a cycle.
//
// The input maps each step name to its direct dependency names. Dependency
// names that are not keys of the map are treated as dead ends rather than
// followed, so malformed input cannot make the walk loop forever. Pure
// function: same input always yields the same answer. O(steps + edges).
func HasCycle(deps map[string][]string) bool {
	colors := make(map[string]visitColor, len(deps))

	var visit func(node string) bool
	visit = func(node string) bool {
		switch colors[node] {
		case colorInProgress:
			// Back-edge to a node still on the stack.
			return true
		case colorDone:
			return false
		}

		colors[node] = colorInProgress
		for _, dep := range deps[node] {
			if _, known := deps[dep]; !known {
				continue
			}
			if visit(dep) {
				return true
			}
		}
		colors[node] = colorDone
		return false
	}

	for node := range deps {
		if colors[node] == colorUnvisited && visit(node) {
			return true
		}
	}
	return false
}
