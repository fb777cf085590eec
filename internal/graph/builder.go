package graph

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/debug"
	"github.com/standardbeagle/auditgraph/internal/syntax"
	"github.com/standardbeagle/auditgraph/internal/types"
)

// containerInfo is the merged view of a container across every file in
// the batch.
type containerInfo struct {
	Name      string
	Kind      containerKind
	Ancestors []string
}

// callSite binds a built node to its body for the call-identification
// phase. The parse tree stays open until the phase completes.
type callSite struct {
	nodeIdx int
	fn      funcDecl
	content []byte
}

// Builder produces one CallGraph per batch of same-language files.
// All indices are scratch state: freshly allocated at the start of
// each GenerateCallGraph invocation, dropped at return. A Builder
// carries no state between unrelated calls.
type Builder struct {
	engine *syntax.Engine
	rules  languageRules

	nodes       []types.GraphNode
	nodeIndex   map[string]int
	byContainer map[string]map[string][]int // container -> label -> node indices
	byLabel     map[string][]int
	containers  map[string]*containerInfo
	extensions  map[string][]string // container -> associated library names
	sites       []callSite
}

// NewBuilder creates a builder for one language. Languages without
// graph rules are rejected; callers filter with GraphSupported first.
func NewBuilder(engine *syntax.Engine, languageID string) (*Builder, error) {
	rules, ok := rulesFor[languageID]
	if !ok {
		return nil, fmt.Errorf("call-graph generation not supported for language %q", languageID)
	}
	return &Builder{engine: engine, rules: rules}, nil
}

func (b *Builder) reset() {
	b.nodes = nil
	b.nodeIndex = make(map[string]int)
	b.byContainer = make(map[string]map[string][]int)
	b.byLabel = make(map[string][]int)
	b.containers = make(map[string]*containerInfo)
	b.extensions = make(map[string][]string)
	b.sites = nil
}

// GenerateCallGraph builds the symbol table for a batch of
// same-language files and resolves the calls found in every function
// body into edges. Files that fail to parse are skipped; unresolved
// calls are dropped silently.
func (b *Builder) GenerateCallGraph(files []types.FileContent) (*types.CallGraph, error) {
	b.reset()
	defer b.reset()

	type parsedFile struct {
		file    types.FileContent
		content []byte
		tree    *tree_sitter.Tree
	}

	var parsed []parsedFile
	defer func() {
		for _, p := range parsed {
			p.tree.Close()
		}
	}()

	for _, file := range files {
		content := []byte(file.Content)
		tree, err := b.engine.Parse(b.rules.LanguageID(), content)
		if err != nil {
			debug.LogGraph("skipping %s: %v", file.Path, err)
			continue
		}
		parsed = append(parsed, parsedFile{file: file, content: content, tree: tree})
	}

	// Phase 1: symbol table. Containers first so that every node knows
	// its scope, then the functions inside each container, then the
	// file's free functions.
	for _, p := range parsed {
		root := p.tree.RootNode()
		containers, assocs := b.rules.Containers(root, p.content)
		for i := range containers {
			b.registerContainer(&containers[i])
		}
		for target, libs := range assocs {
			b.extensions[target] = appendUnique(b.extensions[target], libs...)
		}
		for i := range containers {
			for _, fn := range b.rules.Functions(&containers[i], root, p.content) {
				b.addNode(p.file.Path, containers[i].Name, fn, p.content)
			}
		}
		for _, fn := range b.rules.Functions(nil, root, p.content) {
			b.addNode(p.file.Path, "", fn, p.content)
		}
	}

	// Phase 2: call identification and resolution.
	edges := make([]types.GraphEdge, 0)
	seen := make(map[string]struct{})
	for _, site := range b.sites {
		caller := &b.nodes[site.nodeIdx]
		for _, call := range b.rules.Calls(&site.fn, site.content) {
			target := b.resolve(caller, call)
			if target == nil {
				continue // recall over precision: no edge, no error
			}
			key := caller.ID + "\x00" + target.ID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, types.GraphEdge{
				From: caller.ID,
				To:   target.ID,
				Kind: b.edgeKind(call, target),
			})
		}
	}

	return &types.CallGraph{Nodes: append([]types.GraphNode(nil), b.nodes...), Edges: edges}, nil
}

func (b *Builder) registerContainer(decl *containerDecl) {
	info, ok := b.containers[decl.Name]
	if !ok {
		info = &containerInfo{Name: decl.Name, Kind: decl.Kind}
		b.containers[decl.Name] = info
	}
	info.Ancestors = appendUnique(info.Ancestors, decl.Ancestors...)
}

// addNode indexes a function three ways: by id, by container, and by
// bare label, supporting the resolution priority order. Duplicate ids
// violate the uniqueness invariant and are skipped.
func (b *Builder) addNode(file, container string, fn funcDecl, content []byte) {
	id := fn.Signature
	if container != "" {
		id = container + "." + fn.Signature
	}
	if _, exists := b.nodeIndex[id]; exists {
		debug.LogGraph("duplicate node id %q in %s, keeping first", id, file)
		return
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, types.GraphNode{
		ID:         id,
		Label:      fn.Name,
		File:       file,
		Container:  container,
		Visibility: fn.Visibility,
		Range:      fn.Range,
		RawText:    fn.Raw,
	})
	b.nodeIndex[id] = idx

	labels, ok := b.byContainer[container]
	if !ok {
		labels = make(map[string][]int)
		b.byContainer[container] = labels
	}
	labels[fn.Name] = append(labels[fn.Name], idx)
	b.byLabel[fn.Name] = append(b.byLabel[fn.Name], idx)

	if fn.Body != nil {
		b.sites = append(b.sites, callSite{nodeIdx: idx, fn: fn, content: content})
	}
}

// edgeKind maps the call shape to the edge classification: self calls
// leave the current execution context (external), super and bare calls
// stay inside it (internal), member calls are external unless they
// land on an internal-visibility member of an associated library.
func (b *Builder) edgeKind(call callRef, target *types.GraphNode) types.EdgeKind {
	switch call.Kind {
	case callSelf:
		return types.EdgeExternal
	case callSuper, callBare:
		return types.EdgeInternal
	default:
		if info := b.containers[target.Container]; info != nil &&
			info.Kind == kindLibrary && target.Visibility == types.VisibilityInternal {
			return types.EdgeInternal
		}
		return types.EdgeExternal
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
