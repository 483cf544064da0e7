// Package color picks terminal colors for wallet addresses and notification
// severities. It honours NO_COLOR and non-terminal output through fatih/color.
package color

import (
	"hash/fnv"
	"strings"

	"github.com/fatih/color"
)

var addressPalette = []color.Attribute{
	color.FgHiRed,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiBlue,
	color.FgHiMagenta,
	color.FgHiCyan,
	color.FgRed,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgMagenta,
	color.FgCyan,
}

// ForAddress returns the same color for an address regardless of its hex
// casing.
func ForAddress(addr string) *color.Color {
	return color.New(addressPalette[paletteIndex(addr)])
}

func paletteIndex(addr string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(addr)))
	return int(h.Sum32() % uint32(len(addressPalette)))
}

// Address renders addr in its color.
func Address(addr string) string {
	if addr == "" {
		return ""
	}
	return ForAddress(addr).Sprint(addr)
}

// Severity maps a notification severity to a color. Unknown severities are
// uncolored.
func Severity(severity string) *color.Color {
	switch severity {
	case "success":
		return color.New(color.FgGreen, color.Bold)
	case "error":
		return color.New(color.FgRed, color.Bold)
	case "warning":
		return color.New(color.FgYellow)
	case "info":
		return color.New(color.FgCyan)
	default:
		return color.New(color.Reset)
	}
}

var (
	Faint = color.New(color.Faint)
	Bold  = color.New(color.Bold)
)
