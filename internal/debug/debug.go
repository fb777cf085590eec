// Package debug provides an optional diagnostic log sink. Output is
// disabled unless a writer is installed; results on stdout are never
// mixed with diagnostics.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be overridden at build time:
// go build -ldflags "-X github.com/standardbeagle/auditgraph/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
	debugFile   *os.File
)

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile routes diagnostics to a fresh timestamped file
// under the system temp directory and returns its path. Pair with
// CloseDebugLog.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	dir := filepath.Join(os.TempDir(), "auditgraph-debug-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug log dir: %w", err)
	}

	path := filepath.Join(dir, "debug-"+time.Now().Format("20060102-150405")+".log")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create debug log: %w", err)
	}

	debugFile = file
	debugOutput = file
	return path, nil
}

// CloseDebugLog detaches and closes the active log file, if any.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile, debugOutput = nil, nil
	return err
}

// IsDebugEnabled reports whether any diagnostic output will be written.
func IsDebugEnabled() bool {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput != nil || EnableDebug == "true"
}

func getDebugWriter() io.Writer {
	if debugOutput != nil {
		return debugOutput
	}
	if EnableDebug == "true" {
		return os.Stderr
	}
	return nil
}

// Printf writes a formatted diagnostic line if a sink is configured.
func Printf(format string, args ...interface{}) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, format, args...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		fmt.Fprintln(w)
	}
}

// Log writes a component-tagged diagnostic line.
func Log(component, format string, args ...interface{}) {
	Printf("[%s] %s", component, fmt.Sprintf(format, args...))
}

// LogAnalysis logs size/complexity analyzer diagnostics.
func LogAnalysis(format string, args ...interface{}) {
	Log("analysis", format, args...)
}

// LogGraph logs symbol table and call graph builder diagnostics.
func LogGraph(format string, args ...interface{}) {
	Log("graph", format, args...)
}

// LogGit logs version-control provider diagnostics.
func LogGit(format string, args ...interface{}) {
	Log("git", format, args...)
}
