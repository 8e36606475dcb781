package canvas

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Pixel records and the genesis record are stored as Redis hashes with one
// field per struct field. Numbers are stored in decimal so that uint64 prices
// survive the round trip without float conversion.

// Hash field names shared by the Go helpers and the Lua scripts.
const (
	fieldOwner       = "owner"
	fieldPrice       = "price"
	fieldForSale     = "for_sale"
	fieldMessage     = "message"
	fieldContract    = "contract"
	fieldVersion     = "version"
	fieldCreatedAtMs = "created_at_ms"
)

// PixelToHash converts a PixelRecord to a Redis hash format.
func PixelToHash(p *PixelRecord) map[string]interface{} {
	return map[string]interface{}{
		fieldOwner:   p.Owner,
		fieldPrice:   strconv.FormatUint(p.Price, 10),
		fieldForSale: strconv.FormatBool(p.ForSale),
		fieldMessage: p.Message,
	}
}

// HashToPixel converts a Redis hash to a PixelRecord.
func HashToPixel(hash map[string]string) (*PixelRecord, error) {
	price, err := strconv.ParseUint(hash[fieldPrice], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price field: %w", err)
	}

	forSale, err := strconv.ParseBool(hash[fieldForSale])
	if err != nil {
		return nil, fmt.Errorf("invalid for_sale field: %w", err)
	}

	return &PixelRecord{
		Owner:   hash[fieldOwner],
		Price:   price,
		ForSale: forSale,
		Message: hash[fieldMessage],
	}, nil
}

// InfoToHash converts an Info record to a Redis hash format.
func InfoToHash(i *Info) map[string]interface{} {
	return map[string]interface{}{
		fieldOwner:       i.Owner,
		fieldContract:    i.Contract,
		fieldVersion:     i.Version,
		fieldCreatedAtMs: strconv.FormatInt(i.CreatedAtMs, 10),
	}
}

// HashToInfo converts a Redis hash to an Info record.
func HashToInfo(hash map[string]string) (*Info, error) {
	createdAtMs, err := strconv.ParseInt(hash[fieldCreatedAtMs], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	return &Info{
		Owner:       hash[fieldOwner],
		Contract:    hash[fieldContract],
		Version:     hash[fieldVersion],
		CreatedAtMs: createdAtMs,
	}, nil
}

// ParseColor converts one stored overlay entry to a packed color.
func ParseColor(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

// ParseColors converts the stored overlay list to packed colors.
func ParseColors(values []string) ([]uint32, error) {
	colors := make([]uint32, len(values))
	for i, s := range values {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		colors[i] = c
	}
	return colors, nil
}
