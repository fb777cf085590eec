package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/types"
)

// rustRules maps Rust onto the builder model: an impl block's target
// type is the container, a trait impl records the trait as the
// container's ancestor, traits are interface containers, and functions
// in modules or at top level are free functions.
type rustRules struct{}

func (rustRules) LanguageID() string { return "rust" }

// rustBuiltins are ubiquitous std methods whose edges carry no signal.
var rustBuiltins = map[string]struct{}{
	"unwrap":    {},
	"expect":    {},
	"clone":     {},
	"to_string": {},
	"to_owned":  {},
	"into":      {},
	"from":      {},
	"iter":      {},
	"into_iter": {},
	"collect":   {},
	"len":       {},
	"push":      {},
	"insert":    {},
	"get":       {},
	"as_ref":    {},
	"as_str":    {},
}

func (rustRules) Containers(root *tree_sitter.Node, content []byte) ([]containerDecl, map[string][]string) {
	var containers []containerDecl

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "impl_item":
			decl := containerDecl{Node: *n, Kind: kindContract}
			if t := n.ChildByFieldName("type"); t != nil {
				decl.Name = stripGenerics(nodeText(t, content))
			}
			if trait := n.ChildByFieldName("trait"); trait != nil {
				decl.Ancestors = []string{stripGenerics(nodeText(trait, content))}
			}
			if decl.Name != "" {
				containers = append(containers, decl)
			}
		case "trait_item":
			decl := containerDecl{Node: *n, Kind: kindInterface}
			if name := n.ChildByFieldName("name"); name != nil {
				decl.Name = nodeText(name, content)
			}
			if decl.Name != "" {
				containers = append(containers, decl)
			}
		}
		eachChild(n, walk)
	}
	walk(root)
	return containers, nil
}

func (rustRules) Functions(container *containerDecl, root *tree_sitter.Node, content []byte) []funcDecl {
	if container != nil {
		body := container.Node.ChildByFieldName("body")
		if body == nil {
			return nil
		}
		var functions []funcDecl
		eachChild(body, func(member *tree_sitter.Node) {
			if fn, ok := rustFunction(member, content, container.Kind); ok {
				functions = append(functions, fn)
			}
		})
		return functions
	}

	// Free functions: top level or inside a named module, never inside
	// an impl or trait body.
	var functions []funcDecl
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "impl_item", "trait_item":
			return
		case "function_item":
			if fn, ok := rustFunction(n, content, ""); ok {
				functions = append(functions, fn)
			}
			return
		}
		eachChild(n, walk)
	}
	walk(root)
	return functions
}

func rustFunction(n *tree_sitter.Node, content []byte, container containerKind) (funcDecl, bool) {
	switch n.Kind() {
	case "function_item", "function_signature_item":
	default:
		return funcDecl{}, false
	}
	name := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	if name == nil || params == nil {
		return funcDecl{}, false
	}

	visibility := types.VisibilityPrivate
	if container == kindInterface {
		visibility = types.VisibilityExternal
	}
	eachChild(n, func(child *tree_sitter.Node) {
		if child.Kind() == "visibility_modifier" {
			visibility = types.VisibilityPublic
		}
	})

	return funcDecl{
		Name:       nodeText(name, content),
		Signature:  nodeText(name, content) + normalizeSignature(nodeText(params, content)),
		Visibility: visibility,
		Range:      nodeRange(n),
		Body:       n.ChildByFieldName("body"),
		Receiver:   "self",
		Raw:        signatureText(n, content),
	}, true
}

// Calls walks the body skipping macro subtrees: a call shape inside a
// macro invocation is macro content, not a call expression.
func (rustRules) Calls(fn *funcDecl, content []byte) []callRef {
	var calls []callRef
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "macro_invocation":
			return
		case "call_expression":
			if call, ok := rustCall(n, content); ok {
				calls = append(calls, call)
			}
		}
		eachChild(n, walk)
	}
	walk(fn.Body)
	return calls
}

func rustCall(expr *tree_sitter.Node, content []byte) (callRef, bool) {
	fn := expr.ChildByFieldName("function")
	if fn == nil {
		return callRef{}, false
	}
	switch fn.Kind() {
	case "identifier":
		return denyBuiltin(callRef{Name: nodeText(fn, content), Kind: callBare}, rustBuiltins)
	case "scoped_identifier":
		path := fn.ChildByFieldName("path")
		name := fn.ChildByFieldName("name")
		if name == nil {
			return callRef{}, false
		}
		call := callRef{Name: nodeText(name, content), Kind: callMember}
		if path != nil {
			qualifier := stripGenerics(nodeText(path, content))
			if i := strings.LastIndex(qualifier, "::"); i >= 0 {
				qualifier = qualifier[i+2:]
			}
			if qualifier == "Self" || qualifier == "self" {
				call.Kind = callSelf
			} else {
				call.Qualifier = qualifier
			}
		}
		return denyBuiltin(call, rustBuiltins)
	case "field_expression":
		value := fn.ChildByFieldName("value")
		field := fn.ChildByFieldName("field")
		if field == nil {
			return callRef{}, false
		}
		call := callRef{Name: nodeText(field, content), Kind: callMember}
		if value != nil {
			if nodeText(value, content) == "self" {
				call.Kind = callSelf
			} else if value.Kind() == "identifier" {
				call.Qualifier = nodeText(value, content)
			}
		}
		return denyBuiltin(call, rustBuiltins)
	}
	return callRef{}, false
}
