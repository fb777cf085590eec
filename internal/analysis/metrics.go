// Package analysis computes normalized size, structural complexity,
// and estimated review effort for source files, in whole-file and
// diff-scoped modes.
package analysis

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/auditgraph/internal/debug"
	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/syntax"
	"github.com/standardbeagle/auditgraph/internal/types"
)

// fullFileCommentMarkers are the prefixes that mark a line as
// comment-only in whole-file mode. Diff mode recognizes a wider set;
// the asymmetry is intentional and the two lists must not be merged.
var fullFileCommentMarkers = []string{"//", "/*", "*", "#"}

// Analyzer computes whole-file effort metrics. It is a pure function
// of text plus profile; the engine handle and the profile lookup are
// the only dependencies.
type Analyzer struct {
	engine   *syntax.Engine
	profiles func(languageID string) *lang.Profile
}

// NewAnalyzer creates an analyzer backed by the given syntax engine,
// using the built-in language profiles.
func NewAnalyzer(engine *syntax.Engine) *Analyzer {
	return NewAnalyzerWithProfiles(engine, lang.Get)
}

// NewAnalyzerWithProfiles creates an analyzer with a custom profile
// lookup, letting callers supply config-adjusted estimation constants.
// A nil result from the lookup excludes the language.
func NewAnalyzerWithProfiles(engine *syntax.Engine, lookup func(languageID string) *lang.Profile) *Analyzer {
	return &Analyzer{engine: engine, profiles: lookup}
}

// span is a captured node extent used for containment checks.
type span struct {
	startByte uint
	endByte   uint
	startRow  int
	endRow    int
}

func (s span) properlyContains(o span) bool {
	if s.startByte > o.startByte || o.endByte > s.endByte {
		return false
	}
	return s.startByte < o.startByte || o.endByte < s.endByte
}

func nodeSpan(n *tree_sitter.Node) span {
	return span{
		startByte: n.StartByte(),
		endByte:   n.EndByte(),
		startRow:  int(n.StartPosition().Row),
		endRow:    int(n.EndPosition().Row),
	}
}

// AnalyzeFile computes FileMetrics for one file. A parse failure
// returns an error; callers skip the file and continue the batch.
func (a *Analyzer) AnalyzeFile(profile *lang.Profile, file types.FileContent) (*types.FileMetrics, error) {
	content := []byte(file.Content)
	tree, err := a.engine.Parse(profile.LanguageID, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	root := tree.RootNode()

	lines := strings.Split(file.Content, "\n")
	totalLines := len(lines)
	blankLines := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankLines++
		}
	}

	commentRows := a.commentRows(profile, root, content)
	linesWithComments := len(commentRows)
	onlyCommentLines := 0
	for row := range commentRows {
		if row < len(lines) && isCommentOnly(lines[row], fullFileCommentMarkers) {
			onlyCommentLines++
		}
	}

	branches := a.branchSpans(profile, root, content)
	cognitive := cognitiveComplexity(branches)

	normalizationAdjustment := 0
	if profile.NormalizationQuery != "" {
		normalizationAdjustment = a.normalizationAdjustment(profile, root, content)
	}

	nloc := totalLines - blankLines - onlyCommentLines - normalizationAdjustment
	if nloc < 0 {
		nloc = 0
	}

	commentDensity := 0.0
	normalizedComplexity := 0.0
	if nloc > 0 {
		commentDensity = round2(100 * float64(linesWithComments) / float64(nloc))
		normalizedComplexity = 100 * float64(cognitive) / float64(nloc)
	}

	return &types.FileMetrics{
		File:                file.Path,
		NLoC:                nloc,
		LinesWithComments:   linesWithComments,
		CommentDensity:      commentDensity,
		CognitiveComplexity: cognitive,
		EstimatedHours:      EstimateHours(profile, nloc, normalizedComplexity, commentDensity),
	}, nil
}

// AnalyzeBatch groups files by detected language and computes metrics
// in parallel. Unsupported files are excluded; files that fail to
// parse are logged and skipped. Results are ordered by file path.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, files []types.FileContent) []types.FileMetrics {
	var (
		mu      sync.Mutex
		results []types.FileMetrics
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, file := range files {
		profile := a.profiles(lang.Detect(file.Path))
		if profile == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			metrics, err := a.AnalyzeFile(profile, file)
			if err != nil {
				debug.LogAnalysis("skipping %s: %v", file.Path, err)
				return nil
			}
			mu.Lock()
			results = append(results, *metrics)
			mu.Unlock()
			return nil
		})
	}
	// Per-file failures never abort the batch, so Wait only reports
	// context cancellation; partial results are still returned.
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

// commentRows returns the set of 0-indexed line rows covered by any
// comment capture. Multi-line comments cover every row they span.
func (a *Analyzer) commentRows(profile *lang.Profile, root *tree_sitter.Node, content []byte) map[int]struct{} {
	rows := make(map[int]struct{})
	query, err := a.engine.Query(profile.LanguageID, profile.CommentQuery)
	if err != nil {
		debug.LogAnalysis("comment query failed for %s: %v", profile.LanguageID, err)
		return rows
	}
	for _, capture := range a.engine.Captures(query, root, content) {
		start := int(capture.Node.StartPosition().Row)
		end := int(capture.Node.EndPosition().Row)
		for row := start; row <= end; row++ {
			rows[row] = struct{}{}
		}
	}
	return rows
}

// branchSpans returns the extents of every captured branching
// construct.
func (a *Analyzer) branchSpans(profile *lang.Profile, root *tree_sitter.Node, content []byte) []span {
	query, err := a.engine.Query(profile.LanguageID, profile.BranchQuery)
	if err != nil {
		debug.LogAnalysis("branch query failed for %s: %v", profile.LanguageID, err)
		return nil
	}
	captures := a.engine.Captures(query, root, content)
	spans := make([]span, 0, len(captures))
	for _, capture := range captures {
		spans = append(spans, nodeSpan(&capture.Node))
	}
	return spans
}

// cognitiveComplexity weights every branch construct by one plus its
// nesting level, where the nesting level is the number of other
// captured branches whose span properly contains it. Quadratic in the
// branch count, which is acceptable at file scale.
func cognitiveComplexity(branches []span) int {
	total := 0
	for i, branch := range branches {
		nesting := 0
		for j, other := range branches {
			if i == j {
				continue
			}
			if other.properlyContains(branch) {
				nesting++
			}
		}
		total += 1 + nesting
	}
	return total
}

// normalizationAdjustment counts the extra lines occupied by
// multi-line constructs so that formatting style does not inflate
// NLoC. Function and method constructs fold only their signature
// region (node start to body start): their bodies stay fully counted,
// and nothing inside a body is treated as spanned by the function.
func (a *Analyzer) normalizationAdjustment(profile *lang.Profile, root *tree_sitter.Node, content []byte) int {
	query, err := a.engine.Query(profile.LanguageID, profile.NormalizationQuery)
	if err != nil {
		debug.LogAnalysis("normalization query failed for %s: %v", profile.LanguageID, err)
		return 0
	}

	var spans []span
	for _, capture := range a.engine.Captures(query, root, content) {
		switch capture.Name {
		case "normalize":
			spans = append(spans, nodeSpan(&capture.Node))
		case "normalize.signature":
			spans = append(spans, signatureSpan(&capture.Node))
		}
	}

	adjustment := 0
	for i, s := range spans {
		contained := false
		for j, other := range spans {
			if i == j {
				continue
			}
			if other.properlyContains(s) {
				contained = true
				break
			}
		}
		if contained {
			continue
		}
		if linesSpanned := s.endRow - s.startRow + 1; linesSpanned > 1 {
			adjustment += linesSpanned - 1
		}
	}
	return adjustment
}

// signatureSpan clips a function or method node to its signature
// region: node start up to the start of its body block. Nodes without
// a body field keep their full extent.
func signatureSpan(n *tree_sitter.Node) span {
	s := nodeSpan(n)
	if body := n.ChildByFieldName("body"); body != nil {
		s.endByte = body.StartByte()
		s.endRow = int(body.StartPosition().Row)
	}
	return s
}

// isCommentOnly reports whether a line, after trimming, starts with one
// of the known comment markers.
func isCommentOnly(line string, markers []string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, marker := range markers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
