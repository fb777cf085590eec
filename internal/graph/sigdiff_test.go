package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/syntax"
	"github.com/standardbeagle/auditgraph/internal/types"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(syntax.NewEngine())
}

func sigLineSet(lines ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		set[l] = struct{}{}
	}
	return set
}

func signatures(ranges []types.SignatureRange) []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.Signature)
	}
	return out
}

func TestClassifyFileAddedAndRemoved(t *testing.T) {
	c := newTestClassifier(t)
	profile := lang.Get("go")

	base := `package p

func foo() {}

func bar(a int) {}
`
	head := `package p

func foo() {}

func baz(a int) {}
`
	diff, err := c.ClassifyFile(profile, "p.go", base, head, sigLineSet(5), types.StatusModified)
	require.NoError(t, err)

	assert.Equal(t, []string{"baz(a int)"}, signatures(diff.Added))
	assert.Equal(t, []string{"bar(a int)"}, signatures(diff.Removed))
	assert.Empty(t, diff.Modified)
}

func TestClassifyFileModifiedSignatureLine(t *testing.T) {
	c := newTestClassifier(t)
	profile := lang.Get("go")

	base := `package p

func foo(a int) int {
	return a
}
`
	// Same signature after normalization, but its line changed.
	head := `package p

func foo(a  int) int {
	return a
}
`
	diff, err := c.ClassifyFile(profile, "p.go", base, head, sigLineSet(3), types.StatusModified)
	require.NoError(t, err)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Equal(t, []string{"foo(a int)"}, signatures(diff.Modified))
}

func TestClassifyFileBodyOnlyChange(t *testing.T) {
	c := newTestClassifier(t)
	profile := lang.Get("go")

	base := `package p

func foo(a int) int {
	return a
}
`
	head := `package p

func foo(a int) int {
	return a + 1
}
`
	// The added line is inside the body, past the signature range.
	diff, err := c.ClassifyFile(profile, "p.go", base, head, sigLineSet(4), types.StatusModified)
	require.NoError(t, err)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Modified)
}

func TestClassifyFileAddedStatus(t *testing.T) {
	c := newTestClassifier(t)
	profile := lang.Get("go")

	head := `package p

func one() {}

func two() {}
`
	diff, err := c.ClassifyFile(profile, "p.go", "", head, nil, types.StatusAdded)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"one()", "two()"}, signatures(diff.Added))
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Modified)
}

func TestClassifyFileDeletedStatus(t *testing.T) {
	c := newTestClassifier(t)
	profile := lang.Get("go")

	base := `package p

func gone() {}
`
	diff, err := c.ClassifyFile(profile, "p.go", base, "", nil, types.StatusDeleted)
	require.NoError(t, err)

	assert.Equal(t, []string{"gone()"}, signatures(diff.Removed))
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Modified)
}

func TestClassifyFileMethodSignatures(t *testing.T) {
	c := newTestClassifier(t)
	profile := lang.Get("go")

	base := `package p

type S struct{}

func (s S) Old() {}
`
	head := `package p

type S struct{}

func (s S) New() {}
`
	diff, err := c.ClassifyFile(profile, "p.go", base, head, sigLineSet(5), types.StatusModified)
	require.NoError(t, err)

	assert.Equal(t, []string{"New()"}, signatures(diff.Added))
	assert.Equal(t, []string{"Old()"}, signatures(diff.Removed))
}
