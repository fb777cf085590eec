// Package git wraps git commands to extract per-file change sets and
// file contents at arbitrary refs. Failures here are hard errors: the
// engine never guesses at missing version-control data.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/standardbeagle/auditgraph/internal/debug"
	"github.com/standardbeagle/auditgraph/internal/errors"
	"github.com/standardbeagle/auditgraph/internal/types"
)

// Provider wraps git commands for one repository.
type Provider struct {
	repoRoot string
}

// NewProvider creates a provider rooted at the repository containing
// the given directory.
func NewProvider(repoRoot string) (*Provider, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid repo root: %w", err)
	}

	// git rev-parse --show-toplevel works from any subdirectory.
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", absRoot)
	}

	return &Provider{repoRoot: strings.TrimSpace(string(output))}, nil
}

// RepoRoot returns the repository root path.
func (p *Provider) RepoRoot() string {
	return p.repoRoot
}

// ChangedFiles diffs two refs and returns per-file status plus the
// added/removed 1-indexed line numbers. An empty head ref diffs the
// base against the working tree. Zero context lines keep the hunks
// minimal; renames are disabled so every change maps to add, modify,
// or delete.
func (p *Provider) ChangedFiles(ctx context.Context, baseRef, headRef string, paths ...string) ([]types.FileChange, error) {
	args := []string{"diff", "--no-renames", "-U0", baseRef}
	if headRef != "" {
		args = append(args, headRef)
	}
	args = append(args, "--")
	args = append(args, paths...)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, errors.NewProviderError("git "+strings.Join(args, " "), err)
	}
	return parseUnifiedDiff(output)
}

// parseUnifiedDiff converts raw `git diff` output into FileChange
// values using hunk line accounting.
func parseUnifiedDiff(output []byte) ([]types.FileChange, error) {
	if len(bytes.TrimSpace(output)) == 0 {
		return nil, nil
	}
	fileDiffs, err := godiff.ParseMultiFileDiff(output)
	if err != nil {
		return nil, errors.NewProviderError("parse diff", err)
	}

	changes := make([]types.FileChange, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		oldPath := stripDiffPrefix(fd.OrigName)
		newPath := stripDiffPrefix(fd.NewName)

		change := types.FileChange{
			Path:    newPath,
			OldPath: oldPath,
			Status:  types.StatusModified,
			Added:   make(map[int]struct{}),
			Removed: make(map[int]struct{}),
		}
		switch {
		case oldPath == "":
			change.Status = types.StatusAdded
			change.OldPath = newPath
		case newPath == "":
			change.Status = types.StatusDeleted
			change.Path = oldPath
		}

		for _, hunk := range fd.Hunks {
			collectHunkLines(hunk, change.Added, change.Removed)
		}
		debug.LogGit("%s: %s (+%d/-%d)", change.Path, change.Status, len(change.Added), len(change.Removed))
		changes = append(changes, change)
	}
	return changes, nil
}

// collectHunkLines walks one hunk body tracking both line counters:
// insertions advance the new-side counter, deletions the old side,
// context lines both.
func collectHunkLines(hunk *godiff.Hunk, added, removed map[int]struct{}) {
	newLine := int(hunk.NewStartLine)
	origLine := int(hunk.OrigStartLine)

	for _, line := range bytes.Split(hunk.Body, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			added[newLine] = struct{}{}
			newLine++
		case '-':
			removed[origLine] = struct{}{}
			origLine++
		case ' ':
			newLine++
			origLine++
		}
		// '\' marks "No newline at end of file"; it advances nothing.
	}
}

func stripDiffPrefix(name string) string {
	if name == "/dev/null" || name == "" {
		return ""
	}
	name = strings.TrimPrefix(name, "a/")
	return strings.TrimPrefix(name, "b/")
}

// FileAt returns the content of a path at a ref via `git show`.
func (p *Provider) FileAt(ctx context.Context, ref, path string) (string, error) {
	spec := ref + ":" + path
	cmd := exec.CommandContext(ctx, "git", "show", spec)
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		return "", errors.NewNotFoundError(ref, path)
	}
	return string(output), nil
}

// ResolveRef maps a symbolic ref to its commit hash.
func (p *Provider) ResolveRef(ctx context.Context, ref string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", ref)
	cmd.Dir = p.repoRoot
	output, err := cmd.Output()
	if err != nil {
		return "", errors.NewProviderError("git rev-parse --verify "+ref, err)
	}
	return strings.TrimSpace(string(output)), nil
}
