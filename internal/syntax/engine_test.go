package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/auditgraph/internal/errors"
)

func TestEngineSupported(t *testing.T) {
	e := NewEngine()
	for _, id := range []string{"go", "csharp", "java", "rust", "python", "javascript", "typescript", "cpp", "php", "zig"} {
		assert.True(t, e.Supported(id), id)
	}
	assert.False(t, e.Supported("cobol"))
}

func TestEngineParse(t *testing.T) {
	e := NewEngine()
	content := []byte("package p\n\nfunc f() {}\n")

	tree, err := e.Parse("go", content)
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, "source_file", tree.RootNode().Kind())
}

func TestEngineParseUnknownLanguage(t *testing.T) {
	e := NewEngine()
	_, err := e.Parse("cobol", []byte("x"))
	require.Error(t, err)

	var analysisErr *errors.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.True(t, analysisErr.IsRecoverable())
}

func TestEngineQueryCaching(t *testing.T) {
	e := NewEngine()
	pattern := `(function_declaration name: (identifier) @name) @fn`

	first, err := e.Query("go", pattern)
	require.NoError(t, err)
	second, err := e.Query("go", pattern)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestEngineQueryInvalidPattern(t *testing.T) {
	e := NewEngine()
	_, err := e.Query("go", `(nonsense_node_kind) @x`)
	assert.Error(t, err)
}

func TestEngineCaptures(t *testing.T) {
	e := NewEngine()
	content := []byte("package p\n\nfunc alpha() {}\n\nfunc beta() {}\n")

	tree, err := e.Parse("go", content)
	require.NoError(t, err)
	defer tree.Close()

	query, err := e.Query("go", `(function_declaration name: (identifier) @name) @fn`)
	require.NoError(t, err)

	var names []string
	for _, capture := range e.Captures(query, tree.RootNode(), content) {
		if capture.Name == "name" {
			names = append(names, Text(&capture.Node, content))
		}
	}
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestTextOutOfRange(t *testing.T) {
	e := NewEngine()
	content := []byte("package p\n")

	tree, err := e.Parse("go", content)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "package p\n", Text(root, content))
	assert.Equal(t, "", Text(root, content[:2]))
}
