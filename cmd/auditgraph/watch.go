package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/auditgraph/internal/analysis"
	"github.com/standardbeagle/auditgraph/internal/config"
	"github.com/standardbeagle/auditgraph/internal/debug"
	"github.com/standardbeagle/auditgraph/internal/lang"
	"github.com/standardbeagle/auditgraph/internal/syntax"
)

// watchDebounce coalesces the burst of filesystem events an editor
// save produces into a single re-analysis.
const watchDebounce = 300 * time.Millisecond

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "re-run whole-file metrics whenever a source file changes",
		Action: func(c *cli.Context) error {
			root, cfg, err := setup(c)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()

			if err := addWatchDirs(watcher, cfg, root); err != nil {
				return err
			}

			analyzer := analysis.NewAnalyzerWithProfiles(syntax.NewEngine(), cfg.ProfileFor)
			run := func() error {
				files, err := cfg.Discover(root)
				if err != nil {
					return err
				}
				return emit(map[string]interface{}{"files": analyzer.AnalyzeBatch(c.Context, files)})
			}
			if err := run(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "watching %s\n", root)

			var timer *time.Timer
			pending := make(chan struct{}, 1)
			for {
				select {
				case <-c.Context.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !relevantEvent(watcher, cfg, root, event) {
						continue
					}
					debug.Log("watch", "%s %s", event.Op, event.Name)
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(watchDebounce, func() {
						select {
						case pending <- struct{}{}:
						default:
						}
					})
				case <-pending:
					if err := run(); err != nil {
						return err
					}
				case watchErr, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					debug.Log("watch", "watcher error: %v", watchErr)
				}
			}
		},
	}
}

// addWatchDirs registers the root and every reachable subdirectory.
// fsnotify watches are not recursive, so each directory needs its own.
func addWatchDirs(watcher *fsnotify.Watcher, cfg *config.Config, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && !watchable(cfg, rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func watchable(cfg *config.Config, relDir string) bool {
	// Never watch VCS internals even under a permissive config.
	if filepath.ToSlash(relDir) == ".git" {
		return false
	}
	return cfg.DirIncluded(relDir)
}

// relevantEvent reports whether an event should trigger re-analysis,
// and registers newly created directories along the way.
func relevantEvent(watcher *fsnotify.Watcher, cfg *config.Config, root string, event fsnotify.Event) bool {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return false
	}

	if event.Op.Has(fsnotify.Create) {
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if watchable(cfg, rel) {
				_ = watcher.Add(event.Name)
			}
			return false
		}
	}
	return lang.Detect(event.Name) != "" && cfg.Matches(rel)
}
