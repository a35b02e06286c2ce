package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

const maxStackLines = 40

// Run calls fn and logs a recovered panic instead of crashing the process.
func Run(fn func()) {
	RunWithLog(fn, "safe.Run")
}

func RunWithLog(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", stack()),
			)
		}
	}()

	fn()
}

// Go runs fn in a new goroutine guarded by RunWithLog.
func Go(fn func(), component string) {
	go RunWithLog(fn, component)
}

func stack() string {
	lines := strings.Split(strings.TrimSpace(string(debug.Stack())), "\n")
	if len(lines) > maxStackLines {
		lines = append(lines[:maxStackLines], "... (truncated)")
	}
	return strings.Join(lines, "\n")
}
