// Package canvas provides the ledger for a fixed-size shared pixel canvas.
//
// # Overview
//
// The canvas is a 5x5 grid of cells. Each cell can be purchased exactly once.
// A purchase records the buyer as owner together with a resale price, a
// for-sale flag and a free-text message, and paints the cell in the buyer's
// chosen color.
//
// Two stores back every canvas:
//
//   - The color overlay holds the current color of every cell in a single
//     dense record, so the whole canvas can be read in one operation.
//   - The pixel ledger is a sparse mapping from slot index to the ownership
//     record of purchased cells. It is write-once: there is no update or
//     delete path.
//
// A purchase inserts into the ledger and writes the overlay as one unit. If
// the cell is already owned, nothing changes and ErrAlreadyExists is returned.
//
// # Backends
//
// Canvas is an in-memory store guarded by a mutex. Client stores the same
// data in Redis and runs genesis and purchase as Lua scripts, so concurrent
// buyers racing for one cell see exactly one winner. Both satisfy Store.
//
// # Usage Example
//
//	c := canvas.Genesis("creator")
//
//	err := c.Buy(ctx, "buyer", canvas.BuyRequest{
//		X: 0, Y: 0, Color: 0xFF0000, Price: 100_000_000, Message: "Hello, world!",
//	})
//	if canvas.IsAlreadyExists(err) {
//		// someone got there first
//	}
//
//	resp, err := canvas.QueryPixel(ctx, c, 0, 0)
//
// # Redis Schema
//
// All Redis keys follow the pattern: canvas:{instance_name}:{entity}
//
// Info: canvas:{instance_name}:info
// Colors: canvas:{instance_name}:colors
// Pixels: canvas:{instance_name}:pixel:{slot}
//
// Pub/Sub channel: canvas:{instance_name}:purchase_events
package canvas
