package canvas

import "fmt"

// ColorOverlay holds the current color of every cell, indexed by slot.
// It is created once at genesis and written one slot at a time.
type ColorOverlay struct {
	colors []uint32
}

// NewColorOverlay returns an overlay with every cell white.
func NewColorOverlay() *ColorOverlay {
	colors := make([]uint32, Cells)
	for i := range colors {
		colors[i] = White
	}
	return &ColorOverlay{colors: colors}
}

// ReadAll returns a copy of the full color sequence.
func (o *ColorOverlay) ReadAll() []uint32 {
	out := make([]uint32, len(o.colors))
	copy(out, o.colors)
	return out
}

// ReadOne returns the color at slot.
func (o *ColorOverlay) ReadOne(slot uint32) (uint32, error) {
	if int(slot) >= len(o.colors) {
		return 0, fmt.Errorf("%w: slot %d, overlay length %d", ErrIndexOutOfRange, slot, len(o.colors))
	}
	return o.colors[slot], nil
}

// WriteOne replaces the color at slot.
func (o *ColorOverlay) WriteOne(slot, color uint32) error {
	if int(slot) >= len(o.colors) {
		return fmt.Errorf("%w: slot %d, overlay length %d", ErrIndexOutOfRange, slot, len(o.colors))
	}
	o.colors[slot] = color
	return nil
}
