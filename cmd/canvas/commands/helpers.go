package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyluth/canvas/pkg/canvas"
)

// parseCoords reads X and Y positional arguments.
func parseCoords(args []string) (uint32, uint32, error) {
	x, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x coordinate %q: %w", args[0], err)
	}
	y, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y coordinate %q: %w", args[1], err)
	}
	if !canvas.InBounds(uint32(x), uint32(y)) {
		return 0, 0, fmt.Errorf("(%d, %d) is outside the %dx%d canvas: %w", x, y, canvas.Cols, canvas.Rows, canvas.ErrIndexOutOfRange)
	}
	return uint32(x), uint32(y), nil
}

// parseColor accepts "#RRGGBB", "0xRRGGBB" or a decimal packed value.
func parseColor(s string) (uint32, error) {
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "#"):
		v, err = strconv.ParseUint(s[1:], 16, 32)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	default:
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: expected #RRGGBB, 0xRRGGBB or a decimal value", s)
	}
	if v > uint64(canvas.MaxColor) {
		return 0, fmt.Errorf("invalid color %q: %w", s, canvas.ErrInvalidColor)
	}
	return uint32(v), nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
