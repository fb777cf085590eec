package graph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/auditgraph/internal/types"
)

func publicNode(id string) types.GraphNode {
	return types.GraphNode{ID: id, Label: id, Visibility: types.VisibilityPublic}
}

func internalNode(id string) types.GraphNode {
	return types.GraphNode{ID: id, Label: id, Visibility: types.VisibilityInternal}
}

func TestExecutionPathsLinearChain(t *testing.T) {
	g := &types.CallGraph{
		Nodes: []types.GraphNode{publicNode("A"), internalNode("B"), internalNode("C")},
		Edges: []types.GraphEdge{
			{From: "A", To: "B", Kind: types.EdgeInternal},
			{From: "B", To: "C", Kind: types.EdgeInternal},
		},
	}

	paths := ExecutionPaths(g)
	require.Len(t, paths, 1)
	assert.Equal(t, "A -> B -> C", paths[0])
}

func TestExecutionPathsOnlyEntrypointsAreRoots(t *testing.T) {
	g := &types.CallGraph{
		Nodes: []types.GraphNode{internalNode("a"), internalNode("b")},
		Edges: []types.GraphEdge{{From: "a", To: "b", Kind: types.EdgeInternal}},
	}
	assert.Empty(t, ExecutionPaths(g))
}

func TestExecutionPathsRecursionMarker(t *testing.T) {
	g := &types.CallGraph{
		Nodes: []types.GraphNode{publicNode("A"), internalNode("B")},
		Edges: []types.GraphEdge{
			{From: "A", To: "B", Kind: types.EdgeInternal},
			{From: "B", To: "A", Kind: types.EdgeInternal},
		},
	}

	paths := ExecutionPaths(g)
	require.Len(t, paths, 1)
	assert.Equal(t, "A -> B -> A (Recursive)", paths[0])
}

func TestExecutionPathsSelfRecursion(t *testing.T) {
	g := &types.CallGraph{
		Nodes: []types.GraphNode{publicNode("A")},
		Edges: []types.GraphEdge{{From: "A", To: "A", Kind: types.EdgeInternal}},
	}

	paths := ExecutionPaths(g)
	require.Len(t, paths, 1)
	assert.Equal(t, "A -> A (Recursive)", paths[0])
}

func TestExecutionPathsMaxDepth(t *testing.T) {
	var nodes []types.GraphNode
	var edges []types.GraphEdge
	nodes = append(nodes, publicNode("n00"))
	for i := 1; i < 15; i++ {
		nodes = append(nodes, internalNode(fmt.Sprintf("n%02d", i)))
		edges = append(edges, types.GraphEdge{
			From: fmt.Sprintf("n%02d", i-1),
			To:   fmt.Sprintf("n%02d", i),
			Kind: types.EdgeInternal,
		})
	}

	paths := ExecutionPaths(&types.CallGraph{Nodes: nodes, Edges: edges})
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "(Max Depth)"))
	// Ten real hops plus the marker.
	assert.Len(t, strings.Split(paths[0], " -> "), 11)
}

func TestExecutionPathsKeepsLongestFive(t *testing.T) {
	// One root fanning out into six chains of increasing length.
	nodes := []types.GraphNode{publicNode("root")}
	var edges []types.GraphEdge
	for chain := 0; chain < 6; chain++ {
		prev := "root"
		for depth := 0; depth <= chain; depth++ {
			id := fmt.Sprintf("c%d_%d", chain, depth)
			nodes = append(nodes, internalNode(id))
			edges = append(edges, types.GraphEdge{From: prev, To: id, Kind: types.EdgeInternal})
			prev = id
		}
	}

	paths := ExecutionPaths(&types.CallGraph{Nodes: nodes, Edges: edges})
	require.Len(t, paths, 5)

	// The shortest chain (length 2) is the one cut.
	for _, p := range paths {
		assert.GreaterOrEqual(t, len(strings.Split(p, " -> ")), 3)
	}
	// Longest first.
	assert.Equal(t, "root -> c5_0 -> c5_1 -> c5_2 -> c5_3 -> c5_4 -> c5_5", paths[0])
}

func TestExecutionPathsDeterministic(t *testing.T) {
	g := &types.CallGraph{
		Nodes: []types.GraphNode{publicNode("A"), internalNode("B"), internalNode("C")},
		Edges: []types.GraphEdge{
			{From: "A", To: "C", Kind: types.EdgeInternal},
			{From: "A", To: "B", Kind: types.EdgeInternal},
		},
	}

	first := ExecutionPaths(g)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ExecutionPaths(g))
	}
}
