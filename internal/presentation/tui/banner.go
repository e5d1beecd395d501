package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner to w in the colors of the flag.
// Nothing is written when w is not a terminal.
func PrintBanner(w io.Writer, version, addr string) {
	if !IsTerminal(w) {
		return
	}
	out := termenv.NewOutput(w)
	yellow := out.String("  colombia").Foreground(out.Color("#FCD116")).Bold()
	blue := out.String("-mcp").Foreground(out.Color("#003893")).Bold()
	red := out.String(" " + version).Foreground(out.Color("#CE1126"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s%s\n", yellow, blue, red)
	fmt.Fprintf(w, "  %s\n\n", out.String("streamable HTTP on "+addr).Faint())
}
