package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) *canvas.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := canvas.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Genesis(context.Background(), "creator"))
	return client
}

func TestPollForPixel(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	t.Run("returns pixel when purchased already", func(t *testing.T) {
		require.NoError(t, client.Buy(ctx, "alice", canvas.BuyRequest{X: 1, Y: 1, Color: 9}))

		pixel, err := PollForPixel(ctx, client, 1, 1, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "alice", pixel.Owner)
	})

	t.Run("returns pixel when purchased after delay", func(t *testing.T) {
		go func() {
			time.Sleep(300 * time.Millisecond)
			_ = client.Buy(ctx, "bob", canvas.BuyRequest{X: 2, Y: 2, Color: 9})
		}()

		pixel, err := PollForPixel(ctx, client, 2, 2, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "bob", pixel.Owner)
	})

	t.Run("times out", func(t *testing.T) {
		_, err := PollForPixel(ctx, client, 3, 3, 300*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout waiting for pixel (3, 3)")
	})

	t.Run("context cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := PollForPixel(cctx, client, 3, 3, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects coordinates off the grid", func(t *testing.T) {
		_, err := PollForPixel(ctx, client, 5, 0, time.Second)
		assert.ErrorIs(t, err, canvas.ErrIndexOutOfRange)
	})
}

// unreachableStore fails every existence check.
type unreachableStore struct {
	*canvas.Canvas
}

func (s unreachableStore) PixelExists(ctx context.Context, x, y uint32) (bool, error) {
	return false, errors.New("connection refused")
}

func TestPollForPixel_InMemory(t *testing.T) {
	ctx := context.Background()
	c := canvas.Genesis("creator")

	go func() {
		time.Sleep(250 * time.Millisecond)
		_ = c.Buy(ctx, "carol", canvas.BuyRequest{X: 4, Y: 4, Color: 1})
	}()

	pixel, err := PollForPixel(ctx, c, 4, 4, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "carol", pixel.Owner)
}

func TestPollForPixel_CheckError(t *testing.T) {
	store := unreachableStore{canvas.Genesis("creator")}

	_, err := PollForPixel(context.Background(), store, 0, 0, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check pixel: connection refused")
}

type fakeSource struct {
	events chan *canvas.PurchaseEvent
	errs   chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan *canvas.PurchaseEvent, 10),
		errs:   make(chan error, 10),
	}
}

func (s *fakeSource) Events() <-chan *canvas.PurchaseEvent { return s.events }
func (s *fakeSource) Errors() <-chan error                 { return s.errs }

func sampleEvent(owner string, x, y uint32) *canvas.PurchaseEvent {
	return &canvas.PurchaseEvent{
		ID:            uuid.New().String(),
		Slot:          canvas.Index(x, y),
		X:             x,
		Y:             y,
		Color:         0x00FF00,
		Owner:         owner,
		Price:         100,
		Message:       "hi",
		PurchasedAtMs: time.Now().UnixMilli(),
	}
}

func TestStreamPurchases_FilterAndErrors(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	src := newFakeSource()
	src.events <- sampleEvent("alice", 0, 0)
	src.errs <- errors.New("failed to unmarshal purchase event")
	src.events <- sampleEvent("bob", 4, 1)
	close(src.events)

	var out, errOut bytes.Buffer
	formatter, err := NewFormatter(FormatDefault, &out)
	require.NoError(t, err)

	require.NoError(t, StreamPurchases(context.Background(), src, formatter, Filter{Owner: "bob"}, &errOut))

	assert.NotContains(t, out.String(), "owner=alice")
	assert.Contains(t, out.String(), "(4, 1) slot=9 color=#00FF00 owner=bob price=100")
	assert.Contains(t, out.String(), `message="hi"`)
}

func TestStreamPurchases_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := newFakeSource()

	done := make(chan error, 1)
	go func() {
		done <- StreamPurchases(ctx, src, &jsonlFormatter{encoder: json.NewEncoder(&bytes.Buffer{})}, Filter{}, &bytes.Buffer{})
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("StreamPurchases did not return after cancel")
	}
}

func TestStreamPurchases_FromRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := setupClient(t)

	sub, err := client.SubscribePurchaseEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	out := &syncBuffer{}
	formatter, err := NewFormatter(FormatJSONL, out)
	require.NoError(t, err)

	require.NoError(t, client.Buy(ctx, "alice", canvas.BuyRequest{X: 0, Y: 0, Color: 5, Price: 100_000_000, Message: "Hello, world!"}))

	streamCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- StreamPurchases(streamCtx, sub, formatter, Filter{}, &bytes.Buffer{})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "\n")
	}, 2*time.Second, 20*time.Millisecond)
	stop()
	require.NoError(t, <-done)

	var event canvas.PurchaseEvent
	require.NoError(t, json.Unmarshal([]byte(out.String()), &event))
	assert.NoError(t, event.Validate())
	assert.Equal(t, uint32(5), event.Color)
	assert.Equal(t, "Hello, world!", event.Message)
}

func TestNewFormatter_Unsupported(t *testing.T) {
	_, err := NewFormatter("xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, `unsupported output format "xml"`)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
