package graph

import "github.com/standardbeagle/auditgraph/internal/types"

// resolutionStrategy tries to resolve one call to a node; nil means
// the strategy has no match and the next one runs.
type resolutionStrategy func(b *Builder, caller *types.GraphNode, call callRef) *types.GraphNode

// resolutionOrder is the explicit priority list: same container,
// ancestors (super calls), named container or extension library
// (member calls), free function, then any node with the label as the
// best-effort fallback. First success wins.
var resolutionOrder = []resolutionStrategy{
	resolveSameContainer,
	resolveAncestors,
	resolveNamedContainer,
	resolveFreeFunction,
	resolveAnyLabel,
}

// resolve maps a call to a graph node, or nil when no strategy
// matches. Unresolved calls are dropped by the caller, never reported
// as errors.
func (b *Builder) resolve(caller *types.GraphNode, call callRef) *types.GraphNode {
	for _, strategy := range resolutionOrder {
		if node := strategy(b, caller, call); node != nil {
			return node
		}
	}
	return nil
}

func (b *Builder) lookup(container, label string) *types.GraphNode {
	labels, ok := b.byContainer[container]
	if !ok {
		return nil
	}
	indices := labels[label]
	if len(indices) == 0 {
		return nil
	}
	return &b.nodes[indices[0]]
}

func resolveSameContainer(b *Builder, caller *types.GraphNode, call callRef) *types.GraphNode {
	if caller.Container == "" {
		return nil
	}
	return b.lookup(caller.Container, call.Name)
}

// resolveAncestors walks the caller's ancestor containers in
// declaration order, recursively, for super/parent calls. The visited
// set guards against inheritance cycles.
func resolveAncestors(b *Builder, caller *types.GraphNode, call callRef) *types.GraphNode {
	if call.Kind != callSuper {
		return nil
	}
	visited := make(map[string]struct{})
	return b.searchAncestors(caller.Container, call.Name, visited)
}

func (b *Builder) searchAncestors(container, label string, visited map[string]struct{}) *types.GraphNode {
	info, ok := b.containers[container]
	if !ok {
		return nil
	}
	for _, ancestor := range info.Ancestors {
		if _, seen := visited[ancestor]; seen {
			continue
		}
		visited[ancestor] = struct{}{}
		if node := b.lookup(ancestor, label); node != nil {
			return node
		}
		if node := b.searchAncestors(ancestor, label, visited); node != nil {
			return node
		}
	}
	return nil
}

// resolveNamedContainer handles member and scoped calls: first the
// named container or module, then any extension library associated
// with the caller's container.
func resolveNamedContainer(b *Builder, caller *types.GraphNode, call callRef) *types.GraphNode {
	if call.Kind != callMember {
		return nil
	}
	if call.Qualifier != "" {
		if node := b.lookup(call.Qualifier, call.Name); node != nil {
			return node
		}
		if stripped := stripGenerics(call.Qualifier); stripped != call.Qualifier {
			if node := b.lookup(stripped, call.Name); node != nil {
				return node
			}
		}
	}
	for _, library := range b.extensions[caller.Container] {
		if node := b.lookup(library, call.Name); node != nil {
			return node
		}
	}
	return nil
}

func resolveFreeFunction(b *Builder, _ *types.GraphNode, call callRef) *types.GraphNode {
	return b.lookup("", call.Name)
}

// resolveAnyLabel is the last-resort fallback: any node with the bare
// label, in discovery order.
func resolveAnyLabel(b *Builder, _ *types.GraphNode, call callRef) *types.GraphNode {
	indices := b.byLabel[call.Name]
	if len(indices) == 0 {
		return nil
	}
	return &b.nodes[indices[0]]
}
