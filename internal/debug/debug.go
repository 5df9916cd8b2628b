package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug turns debug output on at build time:
// go build -ldflags "-X github.com/standardbeagle/dirsearch/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by the mcp command. stdout and stderr belong to the
// protocol then, so only a debug log file receives output.
var MCPMode = false

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
	debugFile   *os.File
)

// SetMCPMode enables MCP mode
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets the writer for debug output. nil disables output.
// A log file opened with InitDebugLogFile stays open but no longer receives
// output.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// DefaultLogDir is where InitDebugLogFile puts log files when no path is given
func DefaultLogDir() string {
	return filepath.Join(os.TempDir(), "dirsearch-debug-logs")
}

// InitDebugLogFile sends debug output to a file and turns debug output on,
// in MCP mode too. An empty path creates a timestamped file under
// DefaultLogDir. Returns the path written to; call CloseDebugLog when done.
func InitDebugLogFile(path string) (string, error) {
	if path == "" {
		path = filepath.Join(DefaultLogDir(), fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open debug log file: %w", err)
	}

	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugFile != nil {
		debugFile.Close()
	}
	debugFile = file
	debugOutput = file
	fmt.Fprintf(file, "[DEBUG] log opened %s (pid %d)\n", time.Now().Format(time.RFC3339), os.Getpid())
	return path, nil
}

// CloseDebugLog closes the debug log file if one is open
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	if debugOutput == io.Writer(debugFile) {
		debugOutput = nil
	}
	debugFile = nil
	return err
}

// IsDebugEnabled reports whether debug output is produced. An open log file
// always enables it; otherwise MCP mode disables it and the build flag or
// DEBUG=1/true enables it.
func IsDebugEnabled() bool {
	debugMutex.Lock()
	logging := debugFile != nil
	debugMutex.Unlock()

	switch {
	case logging:
		return true
	case MCPMode:
		return false
	case EnableDebug == "true":
		return true
	default:
		d := os.Getenv("DEBUG")
		return d == "1" || d == "true"
	}
}

// writer returns the current destination. In MCP mode only the log file
// qualifies.
func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if MCPMode {
		if debugFile == nil || debugOutput != io.Writer(debugFile) {
			return nil
		}
	}
	return debugOutput
}

// Log writes one debug line tagged with component
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
	}
}

// LogWatch logs filesystem watch activity
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// LogConfig logs configuration loading
func LogConfig(format string, args ...interface{}) {
	Log("CONFIG", format, args...)
}

// LogSearch logs search sessions
func LogSearch(format string, args ...interface{}) {
	Log("SEARCH", format, args...)
}

// LogMCP logs MCP server activity
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal records a fatal error in the debug output and returns it. It never
// exits; the caller decides.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[FATAL] %s", msg)
	}
	return fmt.Errorf("fatal error: %s", msg)
}

// CatastrophicError records a failure of dirsearch itself, such as a
// recovered panic, regardless of whether debug output is enabled
func CatastrophicError(format string, args ...interface{}) {
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[CATASTROPHIC] "+format, args...)
	}
}
