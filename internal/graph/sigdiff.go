package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/syntax"
	"github.com/standardbeagle/auditgraph/internal/types"
)

// Classifier compares function signatures between two revisions of a
// file.
type Classifier struct {
	engine *syntax.Engine
}

// NewClassifier creates a signature classifier backed by the engine.
func NewClassifier(engine *syntax.Engine) *Classifier {
	return &Classifier{engine: engine}
}

// ClassifyFile classifies the functions of one file as added, removed,
// or modified. For added-status files every head signature is added;
// for deleted-status files every base signature is removed; for
// modified files a signature surviving on both sides counts as
// modified when its signature line range contains at least one added
// line.
func (c *Classifier) ClassifyFile(profile *lang.Profile, path, baseText, headText string, added map[int]struct{}, status types.FileChangeStatus) (*types.SignatureDiff, error) {
	diff := &types.SignatureDiff{File: path}

	switch status {
	case types.StatusAdded:
		head, err := c.extractSignatures(profile, headText)
		if err != nil {
			return nil, err
		}
		diff.Added = head
		return diff, nil
	case types.StatusDeleted:
		base, err := c.extractSignatures(profile, baseText)
		if err != nil {
			return nil, err
		}
		diff.Removed = base
		return diff, nil
	}

	base, err := c.extractSignatures(profile, baseText)
	if err != nil {
		return nil, err
	}
	head, err := c.extractSignatures(profile, headText)
	if err != nil {
		return nil, err
	}

	baseBySig := make(map[string]types.SignatureRange, len(base))
	for _, sig := range base {
		if _, dup := baseBySig[sig.Signature]; !dup {
			baseBySig[sig.Signature] = sig
		}
	}
	headSeen := make(map[string]struct{}, len(head))

	for _, sig := range head {
		if _, dup := headSeen[sig.Signature]; dup {
			continue
		}
		headSeen[sig.Signature] = struct{}{}

		if _, inBase := baseBySig[sig.Signature]; !inBase {
			diff.Added = append(diff.Added, sig)
			continue
		}
		if rangeTouchesLines(sig, added) {
			diff.Modified = append(diff.Modified, sig)
		}
	}
	for _, sig := range base {
		if _, inHead := headSeen[sig.Signature]; !inHead {
			diff.Removed = append(diff.Removed, sig)
		}
	}
	return diff, nil
}

func rangeTouchesLines(sig types.SignatureRange, lines map[int]struct{}) bool {
	for line := sig.StartLine; line <= sig.EndLine; line++ {
		if _, hit := lines[line]; hit {
			return true
		}
	}
	return false
}

// extractSignatures runs the profile's function query and renders each
// captured function as a whitespace-normalized signature with its
// signature-only line range (declaration start to body start).
func (c *Classifier) extractSignatures(profile *lang.Profile, text string) ([]types.SignatureRange, error) {
	content := []byte(text)
	tree, err := c.engine.Parse(profile.LanguageID, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	query, err := c.engine.Query(profile.LanguageID, profile.FunctionQuery)
	if err != nil {
		return nil, err
	}

	var signatures []types.SignatureRange
	for _, capture := range c.engine.Captures(query, tree.RootNode(), content) {
		if capture.Name != "function" {
			continue
		}
		node := capture.Node
		signatures = append(signatures, types.SignatureRange{
			Signature: functionSignature(&node, content),
			StartLine: int(node.StartPosition().Row) + 1,
			EndLine:   signatureEndLine(&node),
		})
	}
	return signatures, nil
}

// functionSignature prefers the name(params) rendering when the
// grammar exposes name and parameter fields, falling back to the full
// signature region text.
func functionSignature(n *tree_sitter.Node, content []byte) string {
	name := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	if name != nil && params != nil {
		return nodeText(name, content) + normalizeSignature(nodeText(params, content))
	}
	return signatureText(n, content)
}

func signatureEndLine(n *tree_sitter.Node) int {
	if body := n.ChildByFieldName("body"); body != nil {
		return int(body.StartPosition().Row) + 1
	}
	return int(n.EndPosition().Row) + 1
}
