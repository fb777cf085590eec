package analysis

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/auditgraph/internal/debug"
	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/types"
)

// diffCommentMarkers is the extended marker set recognized in diff
// mode. Deliberately wider than the whole-file list: a diff touches
// arbitrary languages and the cost of over-recognizing a comment line
// here is a slightly smaller diffNloc, not a wrong parse.
var diffCommentMarkers = []string{"//", "/*", "*", "#", "--", ";;"}

// AnalyzeDiff computes metrics restricted to the changed lines of one
// file. The file content is the current (head) revision; the change
// carries the added/removed 1-indexed line numbers and the status.
// This never returns an error: deleted files short-circuit, and parse
// failures degrade to raw added-line counting.
func (a *Analyzer) AnalyzeDiff(profile *lang.Profile, file types.FileContent, change types.FileChange) types.DiffFileMetrics {
	metrics := types.DiffFileMetrics{
		File:         file.Path,
		Status:       change.Status,
		AddedLines:   len(change.Added),
		RemovedLines: len(change.Removed),
	}

	if change.Status == types.StatusDeleted {
		metrics.AddedLines = 0
		return metrics
	}

	content := []byte(file.Content)
	tree, err := a.engine.Parse(profile.LanguageID, content)
	if err != nil {
		// Best effort: without a tree every added line counts as code.
		debug.LogAnalysis("diff parse failed for %s, counting raw lines: %v", file.Path, err)
		metrics.DiffNLoC = len(change.Added)
		metrics.EstimatedHours = EstimateHours(profile, metrics.DiffNLoC, 0, 0)
		return metrics
	}
	defer tree.Close()
	root := tree.RootNode()

	lines := strings.Split(file.Content, "\n")
	commentRows := a.commentRows(profile, root, content)
	branches := a.branchSpans(profile, root, content)

	diffNloc := 0
	diffComplexity := 0
	linesWithComments := 0

	for lineNumber := range change.Added {
		row := lineNumber - 1
		if row < 0 || row >= len(lines) {
			continue
		}
		line := lines[row]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, inComment := commentRows[row]; inComment && isCommentOnly(line, diffCommentMarkers) {
			linesWithComments++
			continue
		}
		diffNloc++
		// Per-line depth sum: each qualifying added line is weighted by
		// how many branch constructs enclose it. This is a different
		// formula from the whole-file per-construct weighting and the
		// two must stay separate, or diff-scoped estimates shift.
		for _, branch := range branches {
			if row >= branch.startRow && row <= branch.endRow {
				diffComplexity++
			}
		}
	}

	metrics.DiffNLoC = diffNloc
	metrics.DiffComplexity = diffComplexity
	if diffNloc > 0 {
		metrics.CommentDensity = round2(100 * float64(linesWithComments) / float64(diffNloc))
		normalized := 100 * float64(diffComplexity) / float64(diffNloc)
		metrics.EstimatedHours = EstimateHours(profile, diffNloc, normalized, metrics.CommentDensity)
	}
	return metrics
}

// AnalyzeDiffBatch computes diff metrics for every supported changed
// file in parallel. The contents map holds the head revision text
// keyed by path; deleted files need no content. Results are ordered by
// file path.
func (a *Analyzer) AnalyzeDiffBatch(ctx context.Context, changes []types.FileChange, contents map[string]string) []types.DiffFileMetrics {
	var (
		mu      sync.Mutex
		results []types.DiffFileMetrics
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, change := range changes {
		profile := a.profiles(lang.Detect(change.Path))
		if profile == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file := types.FileContent{Path: change.Path, Content: contents[change.Path]}
			metrics := a.AnalyzeDiff(profile, file, change)
			mu.Lock()
			results = append(results, metrics)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}
