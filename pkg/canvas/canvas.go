package canvas

import (
	"context"
	"sync"
	"time"
)

// Canvas is an in-memory canvas ledger. It owns one color overlay and one
// pixel ledger and is safe for concurrent use: each purchase holds the write
// lock across both stores.
type Canvas struct {
	mu      sync.RWMutex
	info    Info
	overlay *ColorOverlay
	ledger  *PixelLedger

	// broken is set once the stores have diverged; every later purchase fails with it.
	broken *InvariantViolationError
}

var _ Store = (*Canvas)(nil)

// Genesis creates a canvas with every cell white, an empty ledger, and owner
// recorded as the canvas creator.
func Genesis(owner string) *Canvas {
	return &Canvas{
		info: Info{
			Owner:       owner,
			Contract:    ContractName,
			Version:     ContractVersion,
			CreatedAtMs: time.Now().UnixMilli(),
		},
		overlay: NewColorOverlay(),
		ledger:  NewPixelLedger(),
	}
}

// Buy purchases the cell at (req.X, req.Y) for buyer.
// If the cell is already owned it returns ErrAlreadyExists and neither store
// changes. If the overlay write fails after the ledger insert, it returns an
// *InvariantViolationError and the canvas accepts no further purchases.
func (c *Canvas) Buy(ctx context.Context, buyer string, req BuyRequest) error {
	if err := req.Validate(buyer); err != nil {
		return err
	}
	slot := Index(req.X, req.Y)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return c.broken
	}

	if err := c.ledger.InsertIfAbsent(slot, req.Record(buyer)); err != nil {
		return err
	}

	if err := c.overlay.WriteOne(slot, req.Color); err != nil {
		c.broken = &InvariantViolationError{Slot: slot, Err: err}
		return c.broken
	}

	return nil
}

// GetColor returns the current color of (x, y).
func (c *Canvas) GetColor(ctx context.Context, x, y uint32) (uint32, error) {
	if err := checkCoords(x, y); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlay.ReadOne(Index(x, y))
}

// GetPixel returns the ownership record of (x, y), or ErrNotFound if the
// cell has never been purchased.
func (c *Canvas) GetPixel(ctx context.Context, x, y uint32) (*PixelRecord, error) {
	if err := checkCoords(x, y); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledger.Get(Index(x, y))
}

// PixelExists reports whether (x, y) has been purchased.
func (c *Canvas) PixelExists(ctx context.Context, x, y uint32) (bool, error) {
	if err := checkCoords(x, y); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, err := c.ledger.Get(Index(x, y))
	return err == nil, nil
}

// GetAllColors returns a copy of every cell's color in slot order.
func (c *Canvas) GetAllColors(ctx context.Context) ([]uint32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlay.ReadAll(), nil
}

// Info returns the genesis record.
func (c *Canvas) Info(ctx context.Context) (*Info, error) {
	info := c.info
	return &info, nil
}
