package printer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Hex formats a packed RGB color as #RRGGBB.
func Hex(c uint32) string {
	return fmt.Sprintf("#%06X", c&0xFFFFFF)
}

// RGB unpacks a packed color into its channels.
func RGB(c uint32) (r, g, b int) {
	return int(c>>16) & 0xFF, int(c>>8) & 0xFF, int(c) & 0xFF
}

// Swatch returns a two-cell block painted in c.
func Swatch(c uint32) string {
	r, g, b := RGB(c)
	return color.BgRGB(r, g, b).Sprint("  ")
}

// RenderGrid draws colors as a cols-wide grid of swatches, one row per line,
// with column and row numbers along the edges.
func RenderGrid(w io.Writer, colors []uint32, cols int) {
	if cols <= 0 {
		return
	}

	fmt.Fprint(w, "   ")
	for x := 0; x < cols; x++ {
		fmt.Fprintf(w, "%-2d", x)
	}
	fmt.Fprintln(w)

	for i := 0; i < len(colors); i += cols {
		fmt.Fprintf(w, "%2d ", i/cols)
		end := i + cols
		if end > len(colors) {
			end = len(colors)
		}
		for _, c := range colors[i:end] {
			fmt.Fprint(w, Swatch(c))
		}
		fmt.Fprintln(w)
	}
}
