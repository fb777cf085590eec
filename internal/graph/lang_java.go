package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/types"
)

// javaRules maps Java onto the builder model: classes are contract
// containers, interfaces are interface containers, and the ancestor
// list is the superclass followed by the implemented interfaces in
// declaration order.
type javaRules struct{}

func (javaRules) LanguageID() string { return "java" }

var javaBuiltins = map[string]struct{}{
	"toString": {},
	"equals":   {},
	"hashCode": {},
	"getClass": {},
}

func (javaRules) Containers(root *tree_sitter.Node, content []byte) ([]containerDecl, map[string][]string) {
	var containers []containerDecl

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "class_declaration", "interface_declaration":
			decl := containerDecl{Node: *n, Kind: kindContract}
			if n.Kind() == "interface_declaration" {
				decl.Kind = kindInterface
			}
			if name := n.ChildByFieldName("name"); name != nil {
				decl.Name = nodeText(name, content)
			}
			decl.Ancestors = javaAncestors(n, content)
			if decl.Name != "" {
				containers = append(containers, decl)
			}
		}
		eachChild(n, walk)
	}
	walk(root)
	return containers, nil
}

// javaAncestors collects the superclass and super-interface names in
// declaration order.
func javaAncestors(n *tree_sitter.Node, content []byte) []string {
	var ancestors []string
	collect := func(list *tree_sitter.Node) {
		for i := uint(0); i < list.NamedChildCount(); i++ {
			if t := list.NamedChild(i); t != nil {
				if name := stripGenerics(nodeText(t, content)); name != "" {
					ancestors = append(ancestors, name)
				}
			}
		}
	}
	eachChild(n, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "superclass":
			collect(child)
		case "super_interfaces", "extends_interfaces":
			eachChild(child, func(list *tree_sitter.Node) {
				if list.Kind() == "type_list" {
					collect(list)
				}
			})
		}
	})
	return ancestors
}

func (javaRules) Functions(container *containerDecl, root *tree_sitter.Node, content []byte) []funcDecl {
	if container == nil {
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
		functions = append(functions, funcDecl{
			Name:       nodeText(name, content),
			Signature:  nodeText(name, content) + normalizeSignature(nodeText(params, content)),
			Visibility: javaVisibility(member, content, container.Kind),
			Range:      nodeRange(member),
			Body:       member.ChildByFieldName("body"),
			Raw:        signatureText(member, content),
		})
	})
	return functions
}

// javaVisibility maps explicit modifiers; package-private members
// default to internal, interface members to external.
func javaVisibility(member *tree_sitter.Node, content []byte, container containerKind) types.Visibility {
	tokens := javaModifierTokens(member, content)
	switch {
	case tokens["public"]:
		return types.VisibilityPublic
	case tokens["private"]:
		return types.VisibilityPrivate
	case tokens["protected"]:
		return types.VisibilityInternal
	}
	if container == kindInterface {
		return types.VisibilityExternal
	}
	return types.VisibilityInternal
}

func javaModifierTokens(n *tree_sitter.Node, content []byte) map[string]bool {
	tokens := make(map[string]bool)
	eachChild(n, func(child *tree_sitter.Node) {
		if child.Kind() != "modifiers" {
			return
		}
		for _, token := range strings.Fields(nodeText(child, content)) {
			tokens[token] = true
		}
	})
	return tokens
}

func (javaRules) Calls(fn *funcDecl, content []byte) []callRef {
	var calls []callRef
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.Kind() == "method_invocation" {
			if call, ok := javaCall(n, content); ok {
				calls = append(calls, call)
			}
		}
		eachChild(n, walk)
	}
	walk(fn.Body)
	return calls
}

func javaCall(invocation *tree_sitter.Node, content []byte) (callRef, bool) {
	name := invocation.ChildByFieldName("name")
	if name == nil {
		return callRef{}, false
	}
	call := callRef{Name: nodeText(name, content), Kind: callBare}

	if object := invocation.ChildByFieldName("object"); object != nil {
		switch nodeText(object, content) {
		case "this":
			call.Kind = callSelf
		case "super":
			call.Kind = callSuper
		default:
			call.Kind = callMember
			call.Qualifier = stripGenerics(nodeText(object, content))
		}
	}
	return denyBuiltin(call, javaBuiltins)
}
