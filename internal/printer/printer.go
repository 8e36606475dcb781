package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Printf("✓ %s", msg)
	} else {
		green.Print(msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Printf("⚠️  %s", msg)
	} else {
		yellow.Print(msg)
	}
}

// Error prints a formatted error (title, explanation, suggestions) to stderr
// and returns a simple error carrying only the title, for Cobra
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with a block of key/value details, printed in key order
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	writeError(os.Stderr, title, explanation, context, suggestions)

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}

func writeError(w io.Writer, title, explanation string, context map[string]string, suggestions []string) {
	red.Fprintf(w, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(w, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(w, "\n")
		for _, key := range keys {
			fmt.Fprintf(w, "  %s: %s\n", key, context[key])
		}
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(w, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(w, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(w, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(w, "  %d. %s\n", i+1, suggestion)
			}
		}
	}
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}
