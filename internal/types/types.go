// Package types defines the shared data model for the analysis engine.
// All values are produced and consumed within a single analysis call;
// nothing here carries state between invocations.
package types

// FileContent is the immutable input unit for every analyzer.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Visibility of a graph node, derived from an explicit modifier keyword
// when present, else from the language's default convention.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityExternal Visibility = "external"
	VisibilityInternal Visibility = "internal"
	VisibilityPrivate  Visibility = "private"
)

// IsEntrypoint reports whether a node with this visibility is a valid
// traversal root for execution path generation.
func (v Visibility) IsEntrypoint() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// EdgeKind classifies a resolved call edge.
type EdgeKind string

const (
	EdgeInternal EdgeKind = "internal"
	EdgeExternal EdgeKind = "external"
)

// Range is a node span in the source file. Lines and columns are
// 1-indexed; byte offsets index into the raw file content.
type Range struct {
	StartLine   int  `json:"startLine"`
	StartColumn int  `json:"startColumn"`
	EndLine     int  `json:"endLine"`
	EndColumn   int  `json:"endColumn"`
	StartByte   uint `json:"-"`
	EndByte     uint `json:"-"`
}

// ContainsLine reports whether the 1-indexed line falls inside the range.
func (r Range) ContainsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// GraphNode is one function or method in the call graph. ID is the
// container-qualified, whitespace-normalized signature and must be
// unique within a single analysis run.
type GraphNode struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	File       string     `json:"file"`
	Container  string     `json:"container,omitempty"`
	Visibility Visibility `json:"visibility"`
	Range      Range      `json:"range"`
	RawText    string     `json:"rawText,omitempty"`
}

// GraphEdge is one resolved call. Identical (From, To) pairs are
// deduplicated by the builder.
type GraphEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// CallGraph is the result of one GenerateCallGraph invocation.
// It is built fresh per call and never persisted.
type CallGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// FileMetrics holds the whole-file effort metrics for one source file.
type FileMetrics struct {
	File                string  `json:"file"`
	NLoC                int     `json:"nloc"`
	LinesWithComments   int     `json:"linesWithComments"`
	CommentDensity      float64 `json:"commentDensity"`
	CognitiveComplexity int     `json:"cognitiveComplexity"`
	EstimatedHours      float64 `json:"estimatedHours"`
}

// FileChangeStatus indicates the type of change to a file in a diff.
type FileChangeStatus string

const (
	StatusAdded    FileChangeStatus = "added"
	StatusModified FileChangeStatus = "modified"
	StatusDeleted  FileChangeStatus = "deleted"
)

// DiffFileMetrics holds effort metrics restricted to the changed lines
// of one file.
type DiffFileMetrics struct {
	File           string           `json:"file"`
	Status         FileChangeStatus `json:"status"`
	AddedLines     int              `json:"addedLines"`
	RemovedLines   int              `json:"removedLines"`
	DiffNLoC       int              `json:"diffNloc"`
	DiffComplexity int              `json:"diffComplexity"`
	CommentDensity float64          `json:"commentDensity"`
	EstimatedHours float64          `json:"estimatedHours"`
}

// SignatureRange is a function signature with its 1-indexed, inclusive
// line span. The end line is the start of the function body, so the
// range covers the signature region only. Used for diff classification.
type SignatureRange struct {
	Signature string `json:"signature"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// SignatureDiff classifies the functions of one file between two
// revisions.
type SignatureDiff struct {
	File     string           `json:"file"`
	Added    []SignatureRange `json:"added"`
	Removed  []SignatureRange `json:"removed"`
	Modified []SignatureRange `json:"modified"`
}

// FileChange is a per-file view of a version-control diff: status plus
// the sets of added and removed 1-indexed line numbers.
type FileChange struct {
	Path    string
	OldPath string
	Status  FileChangeStatus
	Added   map[int]struct{}
	Removed map[int]struct{}
}
