package ui

import (
	"strings"

	"herding/internal/core"
)

var statusKeys = []string{"ticks", "free", "groups", "minted"}

// statusLine renders the live counters of snap as key=value pairs.
func statusLine(snap core.ParameterSnapshot) string {
	var parts []string
	for _, key := range statusKeys {
		if p, ok := snap.Lookup(key); ok {
			parts = append(parts, p.Key+"="+p.Value)
		}
	}
	return strings.Join(parts, "  ")
}
