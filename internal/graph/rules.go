// Package graph builds per-language symbol tables and call graphs,
// generates execution paths over them, and classifies function
// signatures between revisions.
package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/types"
)

// containerKind distinguishes the grouping scopes a language offers.
type containerKind string

const (
	kindContract  containerKind = "contract"  // class, struct-with-methods, impl target
	kindInterface containerKind = "interface" // interface, trait
	kindLibrary   containerKind = "library"   // static/extension holder
)

// containerDecl is one discovered container in one file.
type containerDecl struct {
	Name      string
	Kind      containerKind
	Ancestors []string // inheritance or trait-impl-for-type parents, declaration order
	Node      tree_sitter.Node
}

// funcDecl is one function or method found directly inside a container
// (or at top level for free functions).
type funcDecl struct {
	Name       string
	Signature  string // whitespace-normalized name(params)
	Visibility types.Visibility
	Range      types.Range
	Body       *tree_sitter.Node // nil when the declaration has no body
	Receiver   string            // receiver/self identifier, when the language names one
	Raw        string
}

// callKind classifies the syntactic shape of a recognized call.
type callKind int

const (
	callBare callKind = iota
	callSelf
	callSuper
	callMember // member, qualified, or scoped call
)

// callRef is one recognized call expression inside a function body.
type callRef struct {
	Name      string
	Qualifier string // container/module qualifier for member calls
	Kind      callKind
}

// languageRules is the per-language half of the builder. One
// implementation per supported language; the set is closed and
// selected once through the rulesFor table.
type languageRules interface {
	LanguageID() string

	// Containers discovers the container declarations in a parsed file
	// and any extension associations (container name -> library names
	// whose functions its values may dispatch into).
	Containers(root *tree_sitter.Node, content []byte) ([]containerDecl, map[string][]string)

	// Functions returns the declarations directly inside the container.
	// A nil container requests the file's free functions.
	Functions(container *containerDecl, root *tree_sitter.Node, content []byte) []funcDecl

	// Calls extracts the recognized call expressions from a function
	// body, already filtered through the language's builtin deny-list
	// and macro-invocation skip.
	Calls(fn *funcDecl, content []byte) []callRef
}

// rulesFor maps language ids to their graph rules. Languages absent
// here still get metrics; they just have no call-graph support.
var rulesFor = map[string]languageRules{
	"csharp": csharpRules{},
	"java":   javaRules{},
	"rust":   rustRules{},
	"go":     goRules{},
}

// GraphSupported reports whether call-graph generation is available
// for the language.
func GraphSupported(languageID string) bool {
	_, ok := rulesFor[languageID]
	return ok
}

// normalizeSignature collapses all whitespace runs to single spaces so
// that formatting differences never change a node identity.
func normalizeSignature(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripGenerics truncates a type or method name at its first type
// argument so `List<T>` and `List` key the same container.
func stripGenerics(s string) string {
	if i := strings.IndexByte(s, '<'); i >= 0 {
		return s[:i]
	}
	return s
}

// nodeRange converts a tree-sitter node extent to the 1-indexed Range
// used by the data model.
func nodeRange(n *tree_sitter.Node) types.Range {
	start, end := n.StartPosition(), n.EndPosition()
	return types.Range{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
		StartByte:   n.StartByte(),
		EndByte:     n.EndByte(),
	}
}

// nodeText returns the source text spanned by a node.
func nodeText(n *tree_sitter.Node, content []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}

// eachChild invokes fn for every child of the node.
func eachChild(n *tree_sitter.Node, fn func(child *tree_sitter.Node)) {
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			fn(child)
		}
	}
}

// signatureText renders the signature region of a declaration: node
// start up to the start of its body, or the whole node when it has no
// body block.
func signatureText(n *tree_sitter.Node, content []byte) string {
	start := n.StartByte()
	end := n.EndByte()
	if body := n.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	if int(end) > len(content) || start > end {
		return ""
	}
	return normalizeSignature(string(content[start:end]))
}
