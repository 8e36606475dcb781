package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis storage for a canvas.
// All keys and channels are automatically namespaced with the instance name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

var _ Store = (*Client)(nil)

// NewClient creates a new canvas client for the specified instance.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - instanceName: canvas instance identifier (must not be empty)
//
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// InstanceName returns the namespace this client reads and writes.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Genesis initializes the canvas: a white overlay, an empty ledger and the
// info record naming owner. Returns ErrAlreadyInitialized if the canvas
// already exists; in that case nothing is written.
func (c *Client) Genesis(ctx context.Context, owner string) error {
	info := &Info{
		Owner:       owner,
		Contract:    ContractName,
		Version:     ContractVersion,
		CreatedAtMs: time.Now().UnixMilli(),
	}
	hash := InfoToHash(info)

	args := []interface{}{Cells, strconv.FormatUint(uint64(White), 10)}
	for _, field := range []string{fieldOwner, fieldContract, fieldVersion, fieldCreatedAtMs} {
		args = append(args, field, hash[field])
	}

	keys := []string{InfoKey(c.instanceName), ColorsKey(c.instanceName)}
	code, err := genesisScript.Run(ctx, c.rdb, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to run genesis: %w", err)
	}
	if code == scriptAlreadyExists {
		return ErrAlreadyInitialized
	}

	return nil
}

// Initialized reports whether genesis has run for this instance.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	n, err := c.rdb.Exists(ctx, ColorsKey(c.instanceName)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check canvas existence: %w", err)
	}
	return n > 0, nil
}

// Buy purchases the cell at (req.X, req.Y) for buyer.
//
// The ledger insert and the overlay write run as one Lua script, so Redis
// applies both or neither, and of two concurrent purchases of the same cell
// exactly one succeeds. Returns ErrAlreadyExists if the cell is owned,
// ErrNotInitialized before genesis, and *InvariantViolationError if the
// stored overlay is not a full grid.
//
// After a successful purchase a PurchaseEvent is published to
// canvas:{instance}:purchase_events. A publish failure is returned wrapping
// ErrEventNotPublished; the purchase itself is already committed.
func (c *Client) Buy(ctx context.Context, buyer string, req BuyRequest) error {
	if err := req.Validate(buyer); err != nil {
		return err
	}
	slot := Index(req.X, req.Y)
	record := req.Record(buyer)
	hash := PixelToHash(&record)

	args := []interface{}{slot, strconv.FormatUint(uint64(req.Color), 10), Cells}
	for _, field := range []string{fieldOwner, fieldPrice, fieldForSale, fieldMessage} {
		args = append(args, field, hash[field])
	}

	keys := []string{PixelKey(c.instanceName, slot), ColorsKey(c.instanceName)}
	code, err := buyScript.Run(ctx, c.rdb, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to run purchase: %w", err)
	}

	switch code {
	case scriptOK:
	case scriptAlreadyExists:
		return fmt.Errorf("slot %d: %w", slot, ErrAlreadyExists)
	case scriptNotInitialized:
		return ErrNotInitialized
	case scriptCorrupt:
		return &InvariantViolationError{
			Slot: slot,
			Err:  fmt.Errorf("stored color overlay is not a %d-cell grid", Cells),
		}
	default:
		return fmt.Errorf("unexpected purchase result code %d", code)
	}

	event := &PurchaseEvent{
		ID:            uuid.New().String(),
		Slot:          slot,
		X:             req.X,
		Y:             req.Y,
		Color:         req.Color,
		Owner:         record.Owner,
		Price:         record.Price,
		ForSale:       record.ForSale,
		Message:       record.Message,
		PurchasedAtMs: time.Now().UnixMilli(),
	}
	if err := c.publishPurchase(ctx, event); err != nil {
		return fmt.Errorf("purchase committed: %w: %w", ErrEventNotPublished, err)
	}

	return nil
}

func (c *Client) publishPurchase(ctx context.Context, event *PurchaseEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid purchase event: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	channel := PurchaseEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish purchase event: %w", err)
	}

	return nil
}

// GetColor returns the current color of (x, y).
func (c *Client) GetColor(ctx context.Context, x, y uint32) (uint32, error) {
	if err := checkCoords(x, y); err != nil {
		return 0, err
	}
	slot := Index(x, y)
	key := ColorsKey(c.instanceName)

	value, err := c.rdb.LIndex(ctx, key, int64(slot)).Result()
	if errors.Is(err, redis.Nil) {
		// Either genesis never ran or the overlay is shorter than the grid
		n, lenErr := c.rdb.LLen(ctx, key).Result()
		if lenErr != nil {
			return 0, fmt.Errorf("failed to read color overlay length: %w", lenErr)
		}
		if n == 0 {
			return 0, ErrNotInitialized
		}
		return 0, fmt.Errorf("%w: slot %d, overlay length %d", ErrIndexOutOfRange, slot, n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read color from Redis: %w", err)
	}

	return ParseColor(value)
}

// GetPixel returns the ownership record of (x, y).
// Returns ErrNotFound if the cell has never been purchased.
func (c *Client) GetPixel(ctx context.Context, x, y uint32) (*PixelRecord, error) {
	if err := checkCoords(x, y); err != nil {
		return nil, err
	}
	slot := Index(x, y)

	hashData, err := c.rdb.HGetAll(ctx, PixelKey(c.instanceName, slot)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pixel from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrNotFound)
	}

	pixel, err := HashToPixel(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize pixel: %w", err)
	}

	return pixel, nil
}

// PixelExists checks if (x, y) has been purchased without fetching its record.
func (c *Client) PixelExists(ctx context.Context, x, y uint32) (bool, error) {
	if err := checkCoords(x, y); err != nil {
		return false, err
	}
	n, err := c.rdb.Exists(ctx, PixelKey(c.instanceName, Index(x, y))).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check pixel existence: %w", err)
	}
	return n > 0, nil
}

// GetAllColors returns every cell's color in slot order.
// Returns ErrNotInitialized before genesis.
func (c *Client) GetAllColors(ctx context.Context) ([]uint32, error) {
	values, err := c.rdb.LRange(ctx, ColorsKey(c.instanceName), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read color overlay from Redis: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotInitialized
	}

	return ParseColors(values)
}

// Info returns the genesis record. Returns ErrNotInitialized before genesis.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	hashData, err := c.rdb.HGetAll(ctx, InfoKey(c.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read canvas info from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, ErrNotInitialized
	}

	info, err := HashToInfo(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize canvas info: %w", err)
	}

	return info, nil
}

// Subscription represents an active Pub/Sub subscription to purchase events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *PurchaseEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of purchase events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *PurchaseEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// Malformed or invalid messages are reported here and skipped; the
// subscription continues.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribePurchaseEvents subscribes to purchase events for this instance.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10). Redis Pub/Sub is
// at-most-once: a slow subscriber may miss events.
func (c *Client) SubscribePurchaseEvents(ctx context.Context) (*Subscription, error) {
	channel := PurchaseEventsChannel(c.instanceName)
	pubsub := c.rdb.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so no event published after
	// this call returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to purchase events: %w", err)
	}

	eventsChan := make(chan *PurchaseEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event PurchaseEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal purchase event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				// Decodable but not a purchase this canvas could have made
				if err := event.Validate(); err != nil {
					select {
					case errorsChan <- fmt.Errorf("invalid purchase event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
