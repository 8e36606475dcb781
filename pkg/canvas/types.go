package canvas

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Grid dimensions. The canvas never resizes.
const (
	Rows  uint32 = 5
	Cols  uint32 = 5
	Cells        = int(Rows * Cols)
)

const (
	// White is the packed RGB value of #FFFFFF, the color of every unpurchased cell.
	White uint32 = 16777215

	// MaxColor is the largest packed 24-bit RGB value.
	MaxColor uint32 = 0xFFFFFF

	// ContractName identifies the ledger format recorded at genesis.
	ContractName = "crates.io:canvas"

	// ContractVersion is the ledger format version recorded at genesis.
	ContractVersion = "0.1.0"
)

// PixelRecord holds the ownership and sale metadata of a purchased cell.
// A record is created once, at first purchase, and never changes afterwards.
type PixelRecord struct {
	Owner   string `json:"owner"`    // Identity of the purchaser
	Price   uint64 `json:"price"`    // Resale price set by the purchaser
	ForSale bool   `json:"for_sale"` // Resale intent flag
	Message string `json:"message"`  // Free-form text attached by the purchaser
}

// BuyRequest carries the attributes of a purchase. The buyer identity is
// supplied separately by the caller.
type BuyRequest struct {
	X       uint32 `json:"x"`
	Y       uint32 `json:"y"`
	Color   uint32 `json:"color"`
	Price   uint64 `json:"price"`
	ForSale bool   `json:"for_sale"`
	Message string `json:"message"`
}

// PixelResponse answers a pixel query: the coordinates, the current color and
// the full ownership record.
type PixelResponse struct {
	X         uint32      `json:"x"`
	Y         uint32      `json:"y"`
	Color     uint32      `json:"color"`
	PixelData PixelRecord `json:"pixel_data"`
}

// ColorsResponse answers a colors query with the full overlay.
type ColorsResponse struct {
	Colors []uint32 `json:"colors"`
}

// Info describes a canvas as recorded at genesis.
// Owner is informational only; purchases never consult it.
type Info struct {
	Owner       string `json:"owner"`
	Contract    string `json:"contract"`
	Version     string `json:"version"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// PurchaseEvent is published after every successful purchase on a
// Redis-backed canvas.
type PurchaseEvent struct {
	ID            string `json:"id"` // UUID
	Slot          uint32 `json:"slot"`
	X             uint32 `json:"x"`
	Y             uint32 `json:"y"`
	Color         uint32 `json:"color"`
	Owner         string `json:"owner"`
	Price         uint64 `json:"price"`
	ForSale       bool   `json:"for_sale"`
	Message       string `json:"message"`
	PurchasedAtMs int64  `json:"purchased_at_ms"`
}

// Store is the canvas ledger: the purchase transaction plus the query surface.
type Store interface {
	Buy(ctx context.Context, buyer string, req BuyRequest) error
	GetColor(ctx context.Context, x, y uint32) (uint32, error)
	GetPixel(ctx context.Context, x, y uint32) (*PixelRecord, error)
	PixelExists(ctx context.Context, x, y uint32) (bool, error)
	GetAllColors(ctx context.Context) ([]uint32, error)
	Info(ctx context.Context) (*Info, error)
}

// Validate checks the request and the buyer identity before any state is touched.
func (r BuyRequest) Validate(buyer string) error {
	if buyer == "" {
		return ErrEmptyIdentity
	}
	if err := checkCoords(r.X, r.Y); err != nil {
		return err
	}
	if r.Color > MaxColor {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidColor, r.Color, MaxColor)
	}
	return nil
}

// Record builds the ledger entry this request creates for buyer.
func (r BuyRequest) Record(buyer string) PixelRecord {
	return PixelRecord{
		Owner:   buyer,
		Price:   r.Price,
		ForSale: r.ForSale,
		Message: r.Message,
	}
}

// Validate checks if the PurchaseEvent has valid field values.
func (e *PurchaseEvent) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("invalid event ID: not a valid UUID")
	}
	if err := checkCoords(e.X, e.Y); err != nil {
		return err
	}
	if x, y := Coords(e.Slot); x != e.X || y != e.Y {
		return fmt.Errorf("slot %d does not match coordinates (%d, %d)", e.Slot, e.X, e.Y)
	}
	if e.Owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	return nil
}

// QueryPixel answers a pixel query against any store.
// Returns ErrNotFound if the cell has never been purchased.
func QueryPixel(ctx context.Context, s Store, x, y uint32) (*PixelResponse, error) {
	pixel, err := s.GetPixel(ctx, x, y)
	if err != nil {
		return nil, err
	}
	color, err := s.GetColor(ctx, x, y)
	if err != nil {
		return nil, err
	}
	return &PixelResponse{X: x, Y: y, Color: color, PixelData: *pixel}, nil
}

// QueryColors answers a colors query against any store.
func QueryColors(ctx context.Context, s Store) (*ColorsResponse, error) {
	colors, err := s.GetAllColors(ctx)
	if err != nil {
		return nil, err
	}
	return &ColorsResponse{Colors: colors}, nil
}
