package graph

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/types"
)

// goRules maps Go onto the builder model: a method's receiver type is
// its container, plain functions are free functions, and visibility
// follows the capitalization convention (exported names are public,
// unexported ones internal to the package).
type goRules struct{}

func (goRules) LanguageID() string { return "go" }

var goBuiltins = map[string]struct{}{
	"make":    {},
	"len":     {},
	"cap":     {},
	"append":  {},
	"new":     {},
	"panic":   {},
	"recover": {},
	"copy":    {},
	"delete":  {},
	"close":   {},
	"clear":   {},
	"min":     {},
	"max":     {},
	"print":   {},
	"println": {},
}

func (goRules) Containers(root *tree_sitter.Node, content []byte) ([]containerDecl, map[string][]string) {
	seen := make(map[string]struct{})
	var containers []containerDecl

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.Kind() == "method_declaration" {
			if _, typeName := goReceiver(n, content); typeName != "" {
				if _, dup := seen[typeName]; !dup {
					seen[typeName] = struct{}{}
					// Receiver types have no syntactic body of their own;
					// Functions matches methods against the name instead.
					containers = append(containers, containerDecl{Name: typeName, Kind: kindContract, Node: *root})
				}
			}
		}
		eachChild(n, walk)
	}
	walk(root)
	return containers, nil
}

// goReceiver extracts the receiver identifier and its bare type name
// from a method declaration.
func goReceiver(method *tree_sitter.Node, content []byte) (receiver, typeName string) {
	list := method.ChildByFieldName("receiver")
	if list == nil || list.NamedChildCount() == 0 {
		return "", ""
	}
	param := list.NamedChild(0)
	if param == nil {
		return "", ""
	}
	if name := param.ChildByFieldName("name"); name != nil {
		receiver = nodeText(name, content)
	}
	if t := param.ChildByFieldName("type"); t != nil {
		typeName = strings.TrimPrefix(nodeText(t, content), "*")
		if i := strings.IndexByte(typeName, '['); i >= 0 {
			typeName = typeName[:i]
		}
	}
	return receiver, typeName
}

func (goRules) Functions(container *containerDecl, root *tree_sitter.Node, content []byte) []funcDecl {
	var functions []funcDecl

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "function_declaration":
			if container == nil {
				if fn, ok := goFunction(n, "", content); ok {
					functions = append(functions, fn)
				}
			}
			return
		case "method_declaration":
			if container != nil {
				receiver, typeName := goReceiver(n, content)
				if typeName == container.Name {
					if fn, ok := goFunction(n, receiver, content); ok {
						functions = append(functions, fn)
					}
				}
			}
			return
		}
		eachChild(n, walk)
	}
	walk(root)
	return functions
}

func goFunction(n *tree_sitter.Node, receiver string, content []byte) (funcDecl, bool) {
	name := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	if name == nil || params == nil {
		return funcDecl{}, false
	}
	label := nodeText(name, content)
	return funcDecl{
		Name:       label,
		Signature:  label + normalizeSignature(nodeText(params, content)),
		Visibility: goVisibility(label),
		Range:      nodeRange(n),
		Body:       n.ChildByFieldName("body"),
		Receiver:   receiver,
		Raw:        signatureText(n, content),
	}, true
}

func goVisibility(name string) types.Visibility {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return types.VisibilityPublic
	}
	return types.VisibilityInternal
}

func (goRules) Calls(fn *funcDecl, content []byte) []callRef {
	var calls []callRef
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.Kind() == "call_expression" {
			if call, ok := goCall(n, fn.Receiver, content); ok {
				calls = append(calls, call)
			}
		}
		eachChild(n, walk)
	}
	walk(fn.Body)
	return calls
}

func goCall(expr *tree_sitter.Node, receiver string, content []byte) (callRef, bool) {
	fn := expr.ChildByFieldName("function")
	if fn == nil {
		return callRef{}, false
	}
	switch fn.Kind() {
	case "identifier":
		return denyBuiltin(callRef{Name: nodeText(fn, content), Kind: callBare}, goBuiltins)
	case "selector_expression":
		operand := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		if field == nil {
			return callRef{}, false
		}
		call := callRef{Name: nodeText(field, content), Kind: callMember}
		if operand != nil && operand.Kind() == "identifier" {
			text := nodeText(operand, content)
			if receiver != "" && text == receiver {
				call.Kind = callSelf
			} else {
				call.Qualifier = text
			}
		}
		return denyBuiltin(call, goBuiltins)
	}
	return callRef{}, false
}
