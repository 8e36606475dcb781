package canvas

import "fmt"

// PixelLedger maps slot keys to the records of purchased cells.
// A key is present only once its cell has been bought, and its record is
// never replaced or removed.
type PixelLedger struct {
	pixels map[string]PixelRecord
}

// NewPixelLedger returns an empty ledger.
func NewPixelLedger() *PixelLedger {
	return &PixelLedger{pixels: make(map[string]PixelRecord)}
}

// InsertIfAbsent stores record at slot unless the slot already has one, in
// which case it returns ErrAlreadyExists and leaves the ledger unchanged.
// Callers serialize access; the ledger itself holds no lock.
func (l *PixelLedger) InsertIfAbsent(slot uint32, record PixelRecord) error {
	key := SlotKey(slot)
	if _, exists := l.pixels[key]; exists {
		return fmt.Errorf("slot %d: %w", slot, ErrAlreadyExists)
	}
	l.pixels[key] = record
	return nil
}

// Get returns the record at slot, or ErrNotFound.
func (l *PixelLedger) Get(slot uint32) (*PixelRecord, error) {
	record, ok := l.pixels[SlotKey(slot)]
	if !ok {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrNotFound)
	}
	return &record, nil
}

// Len returns the number of purchased cells.
func (l *PixelLedger) Len() int {
	return len(l.pixels)
}
