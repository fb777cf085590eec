// Command auditgraph analyzes source trees: call graphs, execution
// paths, whole-file and diff-scoped effort metrics, and signature-level
// diff classification. Results go to stdout as JSON; diagnostics go to
// the debug log, never to stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/auditgraph/internal/analysis"
	"github.com/standardbeagle/auditgraph/internal/config"
	"github.com/standardbeagle/auditgraph/internal/debug"
	"github.com/standardbeagle/auditgraph/internal/git"
	"github.com/standardbeagle/auditgraph/internal/graph"
	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/syntax"
	"github.com/standardbeagle/auditgraph/internal/types"
	"github.com/standardbeagle/auditgraph/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "auditgraph",
		Usage:   "call graphs and review-effort metrics for source trees",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "analysis root directory",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to .auditgraph.toml (default: <root>/.auditgraph.toml)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "glob patterns to include (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "glob patterns to exclude (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "write diagnostics to a debug log file",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logPath, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "debug log: %s\n", logPath)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			metricsCommand(),
			graphCommand(),
			pathsCommand(),
			diffCommand(),
			sigdiffCommand(),
			watchCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup resolves the root, loads configuration, and applies flag
// overrides. Every command starts here.
func setup(c *cli.Context) (string, *config.Config, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(root, c.String("config"))
	if err != nil {
		return "", nil, err
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	return root, cfg, nil
}

func emit(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func metricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "whole-file effort metrics for every supported file",
		Action: func(c *cli.Context) error {
			root, cfg, err := setup(c)
			if err != nil {
				return err
			}
			files, err := cfg.Discover(root)
			if err != nil {
				return err
			}
			analyzer := analysis.NewAnalyzerWithProfiles(syntax.NewEngine(), cfg.ProfileFor)
			results := analyzer.AnalyzeBatch(c.Context, files)
			return emit(map[string]interface{}{"files": results})
		},
	}
}

// languageGraph pairs one language with its call graph for output.
type languageGraph struct {
	Language string           `json:"language"`
	Graph    *types.CallGraph `json:"graph"`
}

// buildGraphs groups files by detected language and generates one call
// graph per graph-capable language, in language order.
func buildGraphs(engine *syntax.Engine, files []types.FileContent) ([]languageGraph, error) {
	byLanguage := make(map[string][]types.FileContent)
	for _, file := range files {
		id := lang.Detect(file.Path)
		if id == "" || !graph.GraphSupported(id) {
			continue
		}
		byLanguage[id] = append(byLanguage[id], file)
	}

	languages := make([]string, 0, len(byLanguage))
	for id := range byLanguage {
		languages = append(languages, id)
	}
	sort.Strings(languages)

	graphs := make([]languageGraph, 0, len(languages))
	for _, id := range languages {
		builder, err := graph.NewBuilder(engine, id)
		if err != nil {
			return nil, err
		}
		g, err := builder.GenerateCallGraph(byLanguage[id])
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, languageGraph{Language: id, Graph: g})
	}
	return graphs, nil
}

func graphCommand() *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "resolved call graph per graph-capable language",
		Action: func(c *cli.Context) error {
			root, cfg, err := setup(c)
			if err != nil {
				return err
			}
			files, err := cfg.Discover(root)
			if err != nil {
				return err
			}
			graphs, err := buildGraphs(syntax.NewEngine(), files)
			if err != nil {
				return err
			}
			return emit(map[string]interface{}{"graphs": graphs})
		},
	}
}

func pathsCommand() *cli.Command {
	return &cli.Command{
		Name:  "paths",
		Usage: "execution paths from every public or external function",
		Action: func(c *cli.Context) error {
			root, cfg, err := setup(c)
			if err != nil {
				return err
			}
			files, err := cfg.Discover(root)
			if err != nil {
				return err
			}
			graphs, err := buildGraphs(syntax.NewEngine(), files)
			if err != nil {
				return err
			}
			type languagePaths struct {
				Language string   `json:"language"`
				Paths    []string `json:"paths"`
			}
			result := make([]languagePaths, 0, len(graphs))
			for _, lg := range graphs {
				result = append(result, languagePaths{
					Language: lg.Language,
					Paths:    graph.ExecutionPaths(lg.Graph),
				})
			}
			return emit(map[string]interface{}{"paths": result})
		},
	}
}

func refFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "base",
			Usage:    "base git ref",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "head",
			Usage: "head git ref (default: working tree)",
		},
	}
}

// changedFiles returns the provider, the filtered change list, and the
// head-revision content of every non-deleted changed file.
func changedFiles(c *cli.Context, root string, cfg *config.Config) (*git.Provider, []types.FileChange, map[string]string, error) {
	provider, err := git.NewProvider(root)
	if err != nil {
		return nil, nil, nil, err
	}
	changes, err := provider.ChangedFiles(c.Context, c.String("base"), c.String("head"))
	if err != nil {
		return nil, nil, nil, err
	}

	head := c.String("head")
	contents := make(map[string]string)
	filtered := changes[:0]
	for _, change := range changes {
		if lang.Detect(change.Path) == "" || !cfg.Matches(change.Path) {
			continue
		}
		filtered = append(filtered, change)
		if change.Status == types.StatusDeleted {
			continue
		}
		if head == "" {
			data, readErr := os.ReadFile(filepath.Join(provider.RepoRoot(), change.Path))
			if readErr != nil {
				return nil, nil, nil, readErr
			}
			contents[change.Path] = string(data)
		} else {
			text, showErr := provider.FileAt(c.Context, head, change.Path)
			if showErr != nil {
				return nil, nil, nil, showErr
			}
			contents[change.Path] = text
		}
	}
	return provider, filtered, contents, nil
}

func diffCommand() *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "effort metrics restricted to changed lines",
		Flags: refFlags(),
		Action: func(c *cli.Context) error {
			root, cfg, err := setup(c)
			if err != nil {
				return err
			}
			_, changes, contents, err := changedFiles(c, root, cfg)
			if err != nil {
				return err
			}
			analyzer := analysis.NewAnalyzerWithProfiles(syntax.NewEngine(), cfg.ProfileFor)
			results := analyzer.AnalyzeDiffBatch(c.Context, changes, contents)
			return emit(map[string]interface{}{"files": results})
		},
	}
}

func sigdiffCommand() *cli.Command {
	return &cli.Command{
		Name:  "sigdiff",
		Usage: "classify function signatures as added, removed, or modified",
		Flags: refFlags(),
		Action: func(c *cli.Context) error {
			root, cfg, err := setup(c)
			if err != nil {
				return err
			}
			provider, changes, contents, err := changedFiles(c, root, cfg)
			if err != nil {
				return err
			}

			classifier := graph.NewClassifier(syntax.NewEngine())
			base := c.String("base")
			results := make([]*types.SignatureDiff, 0, len(changes))
			for _, change := range changes {
				profile := cfg.ProfileFor(lang.Detect(change.Path))
				if profile == nil {
					continue
				}
				baseText := ""
				if change.Status != types.StatusAdded {
					basePath := change.OldPath
					if basePath == "" {
						basePath = change.Path
					}
					baseText, err = provider.FileAt(c.Context, base, basePath)
					if err != nil {
						return err
					}
				}
				diff, classifyErr := classifier.ClassifyFile(profile, change.Path, baseText, contents[change.Path], change.Added, change.Status)
				if classifyErr != nil {
					debug.LogGraph("skipping %s: %v", change.Path, classifyErr)
					continue
				}
				results = append(results, diff)
			}
			sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
			return emit(map[string]interface{}{"files": results})
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(c *cli.Context) error {
			fmt.Println(version.FullInfo())
			return nil
		},
	}
}
