package util

import "fmt"

// Truncate shortens long strings (upstream error bodies, payload snippets)
// before they reach a log line or an error message.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// MaskToken hides token material in logs, keeping a short suffix so two
// tokens can still be told apart.
func MaskToken(t string) string {
	if len(t) < 20 {
		return "***"
	}
	return "..." + t[len(t)-8:]
}
