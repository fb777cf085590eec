// Package syntax wraps tree-sitter behind an explicitly constructed
// service: per-language parser and grammar instances plus compiled
// pattern queries, cached in maps owned by the engine. Callers receive
// the engine by reference; there is no module-level global.
package syntax

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/errors"
)

// Capture is one query capture: the capture name from the pattern and
// the matched node.
type Capture struct {
	Name string
	Node tree_sitter.Node
}

type queryKey struct {
	language string
	pattern  uint64
}

type languageEntry struct {
	mu       sync.Mutex // tree-sitter parsers are not safe for concurrent parse
	language *tree_sitter.Language
	parser   *tree_sitter.Parser
}

// Engine is the syntax query engine. Safe for concurrent use; parses
// for the same language are serialized on that language's parser.
type Engine struct {
	mu        sync.RWMutex
	languages map[string]*languageEntry
	queries   map[queryKey]*tree_sitter.Query
}

// NewEngine creates an engine with every supported grammar registered.
func NewEngine() *Engine {
	e := &Engine{
		languages: make(map[string]*languageEntry),
		queries:   make(map[queryKey]*tree_sitter.Query),
	}
	for id, load := range grammarLoaders {
		e.languages[id] = &languageEntry{language: tree_sitter.NewLanguage(load())}
	}
	return e
}

// Supported reports whether the language id has a registered grammar.
func (e *Engine) Supported(languageID string) bool {
	_, ok := e.languages[languageID]
	return ok
}

func (e *Engine) entry(languageID string) (*languageEntry, error) {
	entry, ok := e.languages[languageID]
	if !ok {
		return nil, fmt.Errorf("no grammar registered for language %q", languageID)
	}
	return entry, nil
}

// Parse produces a concrete syntax tree for the given text. The caller
// owns the returned tree and must Close it. A nil tree or a root that
// is pure error is reported as a parse failure.
func (e *Engine) Parse(languageID string, content []byte) (*tree_sitter.Tree, error) {
	entry, err := e.entry(languageID)
	if err != nil {
		return nil, errors.NewParseError("", languageID, err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.parser == nil {
		parser := tree_sitter.NewParser()
		if err := parser.SetLanguage(entry.language); err != nil {
			return nil, errors.NewParseError("", languageID, err)
		}
		entry.parser = parser
	}

	tree := entry.parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.NewParseError("", languageID, fmt.Errorf("parser returned no tree"))
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, errors.NewParseError("", languageID, fmt.Errorf("parse produced no root node"))
	}
	return tree, nil
}

// Query compiles a pattern for the language, caching the compiled
// query by (language, pattern hash).
func (e *Engine) Query(languageID, pattern string) (*tree_sitter.Query, error) {
	key := queryKey{language: languageID, pattern: xxhash.Sum64String(pattern)}

	e.mu.RLock()
	if q, ok := e.queries[key]; ok {
		e.mu.RUnlock()
		return q, nil
	}
	e.mu.RUnlock()

	entry, err := e.entry(languageID)
	if err != nil {
		return nil, err
	}

	query, qerr := tree_sitter.NewQuery(entry.language, pattern)
	// The tree-sitter Go binding can return a typed nil error, so the
	// query pointer is the authoritative check.
	if query == nil {
		return nil, fmt.Errorf("invalid query for %s: %v", languageID, qerr)
	}

	e.mu.Lock()
	e.queries[key] = query
	e.mu.Unlock()
	return query, nil
}

// Captures runs a compiled query against a subtree and returns every
// capture in match order.
func (e *Engine) Captures(query *tree_sitter.Query, node *tree_sitter.Node, content []byte) []Capture {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	names := query.CaptureNames()
	matches := qc.Matches(query, node, content)

	var captures []Capture
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, c := range match.Captures {
			captures = append(captures, Capture{Name: names[c.Index], Node: c.Node})
		}
	}
	return captures
}

// Text returns the source text spanned by a node.
func Text(node *tree_sitter.Node, content []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}
