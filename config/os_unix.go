//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

const forbiddenChars = string(os.PathSeparator) + string(os.PathListSeparator)

// EnableColorOutput checks if colorized output is possible. NO_COLOR
// environment variable disables it regardless of terminal.
func EnableColorOutput(stream *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
