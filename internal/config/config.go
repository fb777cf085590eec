// Package config loads the optional .auditgraph.toml project file:
// include/exclude globs for file discovery and per-language overrides
// for the estimation constants.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/auditgraph/internal/errors"
	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/types"
)

// ConfigFileName is the project configuration file searched for at the
// analysis root.
const ConfigFileName = ".auditgraph.toml"

// EstimationOverride adjusts a language profile's estimation constants.
// Nil fields keep the built-in value.
type EstimationOverride struct {
	BaseRateNlocPerDay        *float64 `toml:"base_rate_nloc_per_day"`
	ComplexityMidpoint        *float64 `toml:"complexity_midpoint"`
	ComplexitySteepness       *float64 `toml:"complexity_steepness"`
	ComplexityBenefitCap      *float64 `toml:"complexity_benefit_cap"`
	ComplexityPenaltyCap      *float64 `toml:"complexity_penalty_cap"`
	CommentFullBenefitDensity *float64 `toml:"comment_full_benefit_density"`
	CommentBenefitCap         *float64 `toml:"comment_benefit_cap"`
}

// Config is the loaded project configuration.
type Config struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`

	// Estimation tables are keyed by language id, e.g. [estimation.go].
	Estimation map[string]EstimationOverride `toml:"estimation"`
}

// Default returns the configuration used when no file is present:
// everything included except the usual dependency and build output
// directories.
func Default() *Config {
	return &Config{
		Include: []string{"**/*"},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/target/**",
			"**/bin/**",
			"**/obj/**",
		},
	}
}

// Load reads the configuration from path. An empty path looks for
// .auditgraph.toml under root; a missing file yields Default().
func Load(root, path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(root, ConfigFileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, configError(path, err)
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**/*"}
	}
	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, configError(path, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern))
		}
	}
	return cfg, nil
}

func configError(path string, err error) *errors.AnalysisError {
	return &errors.AnalysisError{
		Type:       errors.ErrorTypeConfig,
		FilePath:   path,
		Operation:  "load config",
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Matches reports whether a root-relative path passes the include and
// exclude globs. Paths are matched in slash form regardless of OS.
func (c *Config) Matches(relPath string) bool {
	slashed := filepath.ToSlash(relPath)

	included := false
	for _, pattern := range c.Include {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return false
		}
	}
	return true
}

// ProfileFor returns the language profile with any configured
// estimation overrides applied. The built-in profile table is never
// mutated. Returns nil for unsupported languages.
func (c *Config) ProfileFor(languageID string) *lang.Profile {
	base := lang.Get(languageID)
	if base == nil {
		return nil
	}
	override, ok := c.Estimation[languageID]
	if !ok {
		return base
	}

	p := *base
	if v := override.BaseRateNlocPerDay; v != nil {
		p.BaseRateNlocPerDay = *v
	}
	if v := override.ComplexityMidpoint; v != nil {
		p.ComplexityMidpoint = *v
	}
	if v := override.ComplexitySteepness; v != nil {
		p.ComplexitySteepness = *v
	}
	if v := override.ComplexityBenefitCap; v != nil {
		p.ComplexityBenefitCap = *v
	}
	if v := override.ComplexityPenaltyCap; v != nil {
		p.ComplexityPenaltyCap = *v
	}
	if v := override.CommentFullBenefitDensity; v != nil {
		p.CommentFullBenefitDensity = *v
	}
	if v := override.CommentBenefitCap; v != nil {
		p.CommentBenefitCap = *v
	}
	return &p
}

// Discover walks the root directory and returns the contents of every
// file that passes the glob filters and maps to a supported language.
// Results are ordered by the walk, which visits lexically.
func (c *Config) Discover(root string) ([]types.FileContent, error) {
	var files []types.FileContent

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && !c.DirIncluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if lang.Detect(path) == "" || !c.Matches(rel) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		files = append(files, types.FileContent{Path: filepath.ToSlash(rel), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, configError(root, err)
	}
	return files, nil
}

// DirIncluded reports whether a directory may contain analyzable
// files: false when an exclude pattern matches the directory itself,
// or when a subtree-shaped pattern ("dir/**") names it. Walkers use
// this to prune entire subtrees.
func (c *Config) DirIncluded(relDir string) bool {
	slashed := filepath.ToSlash(relDir)
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return false
		}
		if prefix, found := strings.CutSuffix(pattern, "/**"); found {
			if ok, _ := doublestar.Match(prefix, slashed); ok {
				return false
			}
		}
	}
	return true
}
