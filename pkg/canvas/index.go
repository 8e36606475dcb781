package canvas

import (
	"fmt"
	"strconv"
)

// Index maps a coordinate to its slot. Top left is (0, 0); slots run
// row-major. Index does not check bounds: callers that accept untrusted
// coordinates use InBounds first.
func Index(x, y uint32) uint32 {
	return y*Cols + x
}

// Coords is the inverse of Index for in-range slots.
func Coords(slot uint32) (x, y uint32) {
	return slot % Cols, slot / Cols
}

// InBounds reports whether (x, y) names a cell of the grid.
func InBounds(x, y uint32) bool {
	return x < Cols && y < Rows
}

// SlotKey is the ledger key of a slot.
func SlotKey(slot uint32) string {
	return strconv.FormatUint(uint64(slot), 10)
}

func checkCoords(x, y uint32) error {
	if !InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d grid", ErrIndexOutOfRange, x, y, Cols, Rows)
	}
	return nil
}
