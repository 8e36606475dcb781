package canvas

import (
	"errors"
	"testing"
)

// TestIndex tests the row-major slot mapping
func TestIndex(t *testing.T) {
	if got := Index(0, 0); got != 0 {
		t.Errorf("Index(0, 0) = %d, expected 0", got)
	}
	if got := Index(4, 1); got != 9 {
		t.Errorf("Index(4, 1) = %d, expected 9", got)
	}
	if got := Index(4, 4); got != 24 {
		t.Errorf("Index(4, 4) = %d, expected 24", got)
	}
}

// TestIndex_CoversGrid checks Index is injective over the grid and covers [0, Cells)
func TestIndex_CoversGrid(t *testing.T) {
	seen := make(map[uint32]bool)
	for y := uint32(0); y < Rows; y++ {
		for x := uint32(0); x < Cols; x++ {
			slot := Index(x, y)
			if seen[slot] {
				t.Fatalf("slot %d produced twice (at %d, %d)", slot, x, y)
			}
			if int(slot) >= Cells {
				t.Fatalf("slot %d out of range for (%d, %d)", slot, x, y)
			}
			seen[slot] = true

			cx, cy := Coords(slot)
			if cx != x || cy != y {
				t.Errorf("Coords(%d) = (%d, %d), expected (%d, %d)", slot, cx, cy, x, y)
			}
		}
	}
	if len(seen) != Cells {
		t.Errorf("covered %d slots, expected %d", len(seen), Cells)
	}
}

// TestIndex_NoBoundsCheck documents that Index itself does not validate
func TestIndex_NoBoundsCheck(t *testing.T) {
	if got := Index(5, 0); got != 5 {
		t.Errorf("Index(5, 0) = %d, expected 5", got)
	}
	if got := Index(0, 5); got != 25 {
		t.Errorf("Index(0, 5) = %d, expected 25", got)
	}
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		x, y uint32
		want bool
	}{
		{0, 0, true},
		{4, 4, true},
		{5, 0, false},
		{0, 5, false},
		{^uint32(0), 0, false},
	}
	for _, tt := range tests {
		if got := InBounds(tt.x, tt.y); got != tt.want {
			t.Errorf("InBounds(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.want)
		}
		err := checkCoords(tt.x, tt.y)
		if tt.want && err != nil {
			t.Errorf("checkCoords(%d, %d) unexpected error: %v", tt.x, tt.y, err)
		}
		if !tt.want && !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("checkCoords(%d, %d) = %v, expected ErrIndexOutOfRange", tt.x, tt.y, err)
		}
	}
}

func TestSlotKey(t *testing.T) {
	if got := SlotKey(9); got != "9" {
		t.Errorf("SlotKey(9) = %q, expected %q", got, "9")
	}
}
