package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/canvas/pkg/canvas"
)

// PollForPixel polls until the cell at (x, y) has been purchased.
// Returns the pixel record or an error if timeout occurs.
// Polls every 200ms for the specified timeout duration.
func PollForPixel(ctx context.Context, store canvas.Store, x, y uint32, timeout time.Duration) (*canvas.PixelRecord, error) {
	if !canvas.InBounds(x, y) {
		return nil, fmt.Errorf("(%d, %d): %w", x, y, canvas.ErrIndexOutOfRange)
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for pixel (%d, %d) after %v", x, y, timeout)

		case <-ticker.C:
			exists, err := store.PixelExists(ctx, x, y)
			if err != nil {
				return nil, fmt.Errorf("failed to check pixel: %w", err)
			}
			if !exists {
				continue
			}

			pixel, err := store.GetPixel(ctx, x, y)
			if err != nil {
				return nil, fmt.Errorf("failed to query pixel: %w", err)
			}

			return pixel, nil
		}
	}
}
