package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
)

// Output formats for StreamPurchases.
const (
	FormatDefault = "default"
	FormatJSONL   = "jsonl"
)

// Source delivers purchase events. *canvas.Subscription satisfies it.
type Source interface {
	Events() <-chan *canvas.PurchaseEvent
	Errors() <-chan error
}

// Formatter writes one purchase event.
type Formatter interface {
	FormatPurchase(event *canvas.PurchaseEvent) error
}

// NewFormatter returns the formatter for format, writing to w.
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatDefault, "":
		return &defaultFormatter{writer: w}, nil
	case FormatJSONL:
		return &jsonlFormatter{encoder: json.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (expected %q or %q)", format, FormatDefault, FormatJSONL)
	}
}

// Filter selects which events are written.
type Filter struct {
	Owner string // empty matches every owner
}

func (f Filter) matches(event *canvas.PurchaseEvent) bool {
	return f.Owner == "" || event.Owner == f.Owner
}

// StreamPurchases writes events from src until ctx is cancelled or src
// closes. Malformed messages reported on src.Errors() are written to errOut
// and skipped.
func StreamPurchases(ctx context.Context, src Source, formatter Formatter, filter Filter, errOut io.Writer) error {
	events := src.Events()
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !filter.matches(event) {
				continue
			}
			if err := formatter.FormatPurchase(event); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(errOut, "warning: %v\n", err)
		}
	}
}

type defaultFormatter struct {
	writer io.Writer
}

func (f *defaultFormatter) FormatPurchase(event *canvas.PurchaseEvent) error {
	timestamp := time.UnixMilli(event.PurchasedAtMs).Format("15:04:05")
	line := fmt.Sprintf("[%s] 🎨 Pixel purchased: %s (%d, %d) slot=%d color=%s owner=%s price=%d",
		timestamp, printer.Swatch(event.Color), event.X, event.Y, event.Slot,
		printer.Hex(event.Color), event.Owner, event.Price)
	if event.ForSale {
		line += " for_sale"
	}
	if event.Message != "" {
		line += fmt.Sprintf(" message=%q", event.Message)
	}
	_, err := fmt.Fprintln(f.writer, line)
	return err
}

type jsonlFormatter struct {
	encoder *json.Encoder
}

func (f *jsonlFormatter) FormatPurchase(event *canvas.PurchaseEvent) error {
	return f.encoder.Encode(event)
}
