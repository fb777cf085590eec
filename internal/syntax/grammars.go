package syntax

import (
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammarLoaders maps language ids to their grammar constructors. The
// set is fixed at build time; language detection happens before any
// engine call, so unknown ids never reach the parser.
var grammarLoaders = map[string]func() unsafe.Pointer{
	"csharp":     tree_sitter_csharp.Language,
	"cpp":        tree_sitter_cpp.Language,
	"go":         tree_sitter_go.Language,
	"java":       tree_sitter_java.Language,
	"javascript": tree_sitter_javascript.Language,
	"php":        tree_sitter_php.LanguagePHP,
	"python":     tree_sitter_python.Language,
	"rust":       tree_sitter_rust.Language,
	"typescript": tree_sitter_typescript.LanguageTypescript,
	"zig":        tree_sitter_zig.Language,
}
