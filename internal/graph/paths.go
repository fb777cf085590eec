package graph

import (
	"sort"
	"strings"

	"github.com/standardbeagle/auditgraph/internal/types"
)

const (
	// maxPathDepth bounds the traversal; deeper chains end in a
	// synthetic "(Max Depth)" leaf.
	maxPathDepth = 10

	// maxPathsPerEntrypoint keeps only the longest chains per root:
	// longer chains are the ones most likely to reveal interesting
	// control flow.
	maxPathsPerEntrypoint = 5

	pathSeparator = " -> "
)

// ExecutionPaths walks the call graph depth-first from every public or
// external node and renders each root-to-leaf chain as one string.
// Outgoing edges are visited in target-id order, which makes path
// selection reproducible across runs. A node already on the recursion
// stack terminates the branch with a "(Recursive)" leaf instead of
// recursing.
func ExecutionPaths(g *types.CallGraph) []string {
	adjacency := make(map[string][]string)
	for _, edge := range g.Edges {
		adjacency[edge.From] = append(adjacency[edge.From], edge.To)
	}
	for _, targets := range adjacency {
		sort.Strings(targets)
	}

	type candidate struct {
		joined string
		length int
	}

	var result []string
	for _, node := range g.Nodes {
		if !node.Visibility.IsEntrypoint() {
			continue
		}

		var candidates []candidate
		emit := func(chain []string) {
			candidates = append(candidates, candidate{
				joined: strings.Join(chain, pathSeparator),
				length: len(chain),
			})
		}

		var dfs func(stack []string, id string)
		dfs = func(stack []string, id string) {
			stack = append(stack, id)
			if len(stack) >= maxPathDepth {
				emit(append(stack, "(Max Depth)"))
				return
			}
			targets := adjacency[id]
			if len(targets) == 0 {
				emit(stack)
				return
			}
			for _, target := range targets {
				if onStack(stack, target) {
					emit(append(stack, target+" (Recursive)"))
					continue
				}
				// Re-slice so sibling branches never share backing array
				// growth from this branch.
				dfs(stack[:len(stack):len(stack)], target)
			}
		}
		dfs(nil, node.ID)

		// Longest first; ties keep discovery order.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].length > candidates[j].length
		})
		if len(candidates) > maxPathsPerEntrypoint {
			candidates = candidates[:maxPathsPerEntrypoint]
		}
		for _, c := range candidates {
			result = append(result, c.joined)
		}
	}
	return result
}

func onStack(stack []string, id string) bool {
	for _, entry := range stack {
		if entry == id {
			return true
		}
	}
	return false
}
