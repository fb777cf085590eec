package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/types"
)

// csharpRules maps C# onto the builder model: classes and structs are
// contract containers, interfaces are interface containers, static
// classes are libraries, and extension methods associate the extended
// type with their library.
type csharpRules struct{}

func (csharpRules) LanguageID() string { return "csharp" }

// csharpBuiltins are object-plumbing members that would otherwise
// flood the graph with meaningless edges.
var csharpBuiltins = map[string]struct{}{
	"nameof":      {},
	"typeof":      {},
	"ToString":    {},
	"GetType":     {},
	"Equals":      {},
	"GetHashCode": {},
}

// csharpVisibilityOrder is checked front to back; composite modifiers
// like `private protected` resolve to the first keyword present, so
// classification never depends on map iteration order.
var csharpVisibilityOrder = []struct {
	keyword    string
	visibility types.Visibility
}{
	{"public", types.VisibilityPublic},
	{"private", types.VisibilityPrivate},
	{"internal", types.VisibilityInternal},
	{"protected", types.VisibilityInternal},
}

func (csharpRules) Containers(root *tree_sitter.Node, content []byte) ([]containerDecl, map[string][]string) {
	var containers []containerDecl
	assocs := make(map[string][]string)

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "class_declaration", "struct_declaration", "interface_declaration":
			decl := csharpContainer(n, content)
			if decl.Name != "" {
				containers = append(containers, decl)
				if decl.Kind == kindLibrary {
					for _, target := range csharpExtensionTargets(n, content) {
						assocs[target] = append(assocs[target], decl.Name)
					}
				}
			}
		}
		eachChild(n, walk)
	}
	walk(root)
	return containers, assocs
}

func csharpContainer(n *tree_sitter.Node, content []byte) containerDecl {
	decl := containerDecl{Node: *n, Kind: kindContract}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = stripGenerics(nodeText(name, content))
	}
	switch {
	case n.Kind() == "interface_declaration":
		decl.Kind = kindInterface
	case hasModifier(n, content, "static"):
		decl.Kind = kindLibrary
	}
	eachChild(n, func(child *tree_sitter.Node) {
		if child.Kind() != "base_list" {
			return
		}
		for i := uint(0); i < child.NamedChildCount(); i++ {
			base := child.NamedChild(i)
			if base == nil {
				continue
			}
			name := stripGenerics(nodeText(base, content))
			if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
				name = name[dot+1:]
			}
			if name != "" {
				decl.Ancestors = append(decl.Ancestors, name)
			}
		}
	})
	return decl
}

// csharpExtensionTargets returns the types extended by the static
// class's extension methods (first parameter carrying `this`).
func csharpExtensionTargets(class *tree_sitter.Node, content []byte) []string {
	var targets []string
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	eachChild(body, func(member *tree_sitter.Node) {
		if member.Kind() != "method_declaration" {
			return
		}
		params := member.ChildByFieldName("parameters")
		if params == nil || params.NamedChildCount() == 0 {
			return
		}
		first := params.NamedChild(0)
		if first == nil || !strings.HasPrefix(strings.TrimSpace(nodeText(first, content)), "this ") {
			return
		}
		if paramType := first.ChildByFieldName("type"); paramType != nil {
			if name := stripGenerics(nodeText(paramType, content)); name != "" {
				targets = append(targets, name)
			}
		}
	})
	return targets
}

func (csharpRules) Functions(container *containerDecl, root *tree_sitter.Node, content []byte) []funcDecl {
	if container == nil {
		// C# has no free functions at the level the graph models.
		return nil
	}
	body := container.Node.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var functions []funcDecl
	eachChild(body, func(member *tree_sitter.Node) {
		switch member.Kind() {
		case "method_declaration", "constructor_declaration":
		default:
			return
		}
		name := member.ChildByFieldName("name")
		params := member.ChildByFieldName("parameters")
		if name == nil || params == nil {
			return
		}

		visibility := csharpMemberVisibility(member, content, container.Kind)
		fn := funcDecl{
			Name:       nodeText(name, content),
			Signature:  nodeText(name, content) + normalizeSignature(nodeText(params, content)),
			Visibility: visibility,
			Range:      nodeRange(member),
			Body:       csharpBody(member),
			Raw:        signatureText(member, content),
		}
		functions = append(functions, fn)
	})
	return functions
}

func csharpMemberVisibility(member *tree_sitter.Node, content []byte, container containerKind) types.Visibility {
	for _, entry := range csharpVisibilityOrder {
		if hasModifier(member, content, entry.keyword) {
			return entry.visibility
		}
	}
	if container == kindInterface {
		return types.VisibilityExternal
	}
	return types.VisibilityInternal
}

func csharpBody(member *tree_sitter.Node) *tree_sitter.Node {
	if body := member.ChildByFieldName("body"); body != nil {
		return body
	}
	var arrow *tree_sitter.Node
	eachChild(member, func(child *tree_sitter.Node) {
		if child.Kind() == "arrow_expression_clause" {
			arrow = child
		}
	})
	return arrow
}

func (csharpRules) Calls(fn *funcDecl, content []byte) []callRef {
	var calls []callRef
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.Kind() == "invocation_expression" {
			if call, ok := csharpCall(n, content); ok {
				calls = append(calls, call)
			}
		}
		eachChild(n, walk)
	}
	walk(fn.Body)
	return calls
}

func csharpCall(invocation *tree_sitter.Node, content []byte) (callRef, bool) {
	fn := invocation.ChildByFieldName("function")
	if fn == nil {
		return callRef{}, false
	}
	switch fn.Kind() {
	case "identifier":
		return denyBuiltin(callRef{Name: nodeText(fn, content), Kind: callBare}, csharpBuiltins)
	case "generic_name":
		return denyBuiltin(callRef{Name: stripGenerics(nodeText(fn, content)), Kind: callBare}, csharpBuiltins)
	case "member_access_expression":
		name := fn.ChildByFieldName("name")
		receiver := fn.ChildByFieldName("expression")
		if name == nil || receiver == nil {
			return callRef{}, false
		}
		call := callRef{Name: stripGenerics(nodeText(name, content))}
		switch nodeText(receiver, content) {
		case "this":
			call.Kind = callSelf
		case "base":
			call.Kind = callSuper
		default:
			call.Kind = callMember
			call.Qualifier = stripGenerics(nodeText(receiver, content))
		}
		return denyBuiltin(call, csharpBuiltins)
	}
	return callRef{}, false
}

// hasModifier reports whether a declaration carries the given modifier
// keyword among its direct children.
func hasModifier(n *tree_sitter.Node, content []byte, keyword string) bool {
	found := false
	eachChild(n, func(child *tree_sitter.Node) {
		if nodeText(child, content) == keyword {
			found = true
		}
	})
	return found
}

// denyBuiltin drops calls to known builtin/intrinsic names.
func denyBuiltin(call callRef, builtins map[string]struct{}) (callRef, bool) {
	if call.Name == "" {
		return callRef{}, false
	}
	if _, denied := builtins[call.Name]; denied {
		return callRef{}, false
	}
	return call, true
}
