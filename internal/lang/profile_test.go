package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := map[string]string{
		"main.go":          "go",
		"src/app.cs":       "csharp",
		"Service.java":     "java",
		"lib.rs":           "rust",
		"script.py":        "python",
		"app.js":           "javascript",
		"component.jsx":    "javascript",
		"module.mjs":       "javascript",
		"app.ts":           "typescript",
		"view.tsx":         "typescript",
		"core.cpp":         "cpp",
		"legacy.c":         "cpp",
		"header.hpp":       "cpp",
		"index.php":        "php",
		"build.zig":        "zig",
		"README.md":        "",
		"Makefile":         "",
		"noextension":      "",
		"archive.tar.gz":   "",
		"deep/path/f.rs":   "rust",
		"UPPER/Program.cs": "csharp",
	}
	for path, want := range cases {
		assert.Equal(t, want, Detect(path), path)
	}
}

func TestGetUnknownLanguage(t *testing.T) {
	assert.Nil(t, Get("cobol"))
	assert.Nil(t, Get(""))
}

func TestProfilesComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 10)

	for id, p := range all {
		assert.Equal(t, id, p.LanguageID)
		assert.NotEmpty(t, p.CommentQuery, id)
		assert.NotEmpty(t, p.FunctionQuery, id)
		assert.NotEmpty(t, p.BranchQuery, id)

		assert.Greater(t, p.BaseRateNlocPerDay, 0.0, id)
		assert.Greater(t, p.ComplexityMidpoint, 0.0, id)
		assert.Greater(t, p.ComplexitySteepness, 0.0, id)
		assert.Greater(t, p.ComplexityBenefitCap, 0.0, id)
		assert.Greater(t, p.ComplexityPenaltyCap, 0.0, id)
		assert.Greater(t, p.CommentFullBenefitDensity, 0.0, id)
		assert.Greater(t, p.CommentBenefitCap, 0.0, id)
	}
}

func TestZigHasNoNormalizationQuery(t *testing.T) {
	p := Get("zig")
	require.NotNil(t, p)
	assert.Empty(t, p.NormalizationQuery)
}

func TestDetectMatchesProfiles(t *testing.T) {
	// Every language the extension table can produce has a profile.
	for _, path := range []string{"a.go", "a.cs", "a.java", "a.rs", "a.py", "a.js", "a.ts", "a.cpp", "a.php", "a.zig"} {
		id := Detect(path)
		require.NotEmpty(t, id, path)
		assert.NotNil(t, Get(id), path)
	}
}
