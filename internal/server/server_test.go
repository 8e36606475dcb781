package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(canvas.Genesis("creator"), nil, zerolog.Nop())
}

func newRedisServer(t *testing.T) (*Server, *canvas.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := canvas.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Genesis(context.Background(), "creator"))

	return New(client, client, zerolog.Nop()), client, mr
}

func do(t *testing.T, s *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func buyer(id string) map[string]string {
	return map[string]string{IdentityHeader: id}
}

func TestHealth(t *testing.T) {
	t.Run("no backend", func(t *testing.T) {
		w := do(t, newTestServer(t), http.MethodGet, "/healthz", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Empty(t, resp.Redis)
	})

	t.Run("redis connected", func(t *testing.T) {
		s, _, _ := newRedisServer(t)
		w := do(t, s, http.MethodGet, "/healthz", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "connected", resp.Redis)
	})

	t.Run("redis unavailable", func(t *testing.T) {
		// Port 9 is the discard protocol - connections will fail immediately
		client, err := canvas.NewClient(&redis.Options{
			Addr:         "localhost:9",
			DialTimeout:  50 * time.Millisecond,
			ReadTimeout:  50 * time.Millisecond,
			WriteTimeout: 50 * time.Millisecond,
			MaxRetries:   -1,
		}, "test")
		require.NoError(t, err)
		defer client.Close()

		s := New(client, client, zerolog.Nop())
		w := do(t, s, http.MethodGet, "/healthz", nil, nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "disconnected", resp.Redis)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestColors_Genesis(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/colors", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp canvas.ColorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Colors, canvas.Cells)
	for _, c := range resp.Colors {
		assert.Equal(t, canvas.White, c)
	}
}

func TestInfo(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/info", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info canvas.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "creator", info.Owner)
	assert.Equal(t, canvas.ContractName, info.Contract)
}

func TestBuyAndQuery(t *testing.T) {
	backends := map[string]func(t *testing.T) *Server{
		"memory": newTestServer,
		"redis": func(t *testing.T) *Server {
			s, _, _ := newRedisServer(t)
			return s
		},
	}

	for name, newServer := range backends {
		t.Run(name, func(t *testing.T) {
			s := newServer(t)
			req := canvas.BuyRequest{X: 0, Y: 0, Color: 5, Price: 100_000_000, Message: "Hello, world!"}

			w := do(t, s, http.MethodPost, "/pixels", req, buyer("alice"))
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var created canvas.PixelResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
			assert.Equal(t, uint32(5), created.Color)
			assert.Equal(t, "alice", created.PixelData.Owner)

			w = do(t, s, http.MethodGet, "/pixels/0/0", nil, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
			assert.Equal(t, float64(5), raw["color"])
			pixel := raw["pixel_data"].(map[string]any)
			assert.Equal(t, "alice", pixel["owner"])
			assert.Equal(t, float64(100_000_000), pixel["price"])
			assert.Equal(t, false, pixel["for_sale"])
			assert.Equal(t, "Hello, world!", pixel["message"])

			// Second purchase loses and leaves the cell unchanged
			req.Color = 7
			w = do(t, s, http.MethodPost, "/pixels", req, buyer("bob"))
			require.Equal(t, http.StatusConflict, w.Code)
			assert.Contains(t, w.Body.String(), "pixel data already exists")

			w = do(t, s, http.MethodGet, "/colors", nil, nil)
			var colors canvas.ColorsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &colors))
			assert.Equal(t, uint32(5), colors.Colors[0])
		})
	}
}

func TestPixel_NotPurchased(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/pixels/4/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPixel_BadCoordinates(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path string
		code int
	}{
		{"/pixels/5/0", http.StatusBadRequest},
		{"/pixels/0/5", http.StatusBadRequest},
		{"/pixels/a/0", http.StatusBadRequest},
		{"/pixels/0/-1", http.StatusBadRequest},
		{"/pixels/4294967296/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.path, nil, nil)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestBuy_BadRequests(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing identity", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/pixels", canvas.BuyRequest{Color: 1}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), IdentityHeader)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/pixels", `{"x":`, buyer("alice"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative color", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/pixels", `{"x":0,"y":0,"color":-1}`, buyer("alice"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("out of range", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/pixels", canvas.BuyRequest{X: 5, Y: 0, Color: 1}, buyer("alice"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("color above 24 bits", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/pixels", canvas.BuyRequest{Color: 0x1000000}, buyer("alice"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	// None of the rejected requests touched the canvas
	w := do(t, s, http.MethodGet, "/pixels/0/0", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuy_InvariantViolation(t *testing.T) {
	s, _, mr := newRedisServer(t)

	// Shrink the stored overlay so the purchase cannot complete both writes
	_, err := mr.Lpop("canvas:{test-instance}:colors")
	require.NoError(t, err)

	w := do(t, s, http.MethodPost, "/pixels", canvas.BuyRequest{X: 0, Y: 0, Color: 3}, buyer("alice"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "invariant violation")
}

func TestNotInitialized(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := canvas.NewClient(&redis.Options{Addr: mr.Addr()}, "fresh")
	require.NoError(t, err)
	defer client.Close()

	s := New(client, client, zerolog.Nop())
	w := do(t, s, http.MethodGet, "/colors", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"already exists", fmt.Errorf("slot 0: %w", canvas.ErrAlreadyExists), http.StatusConflict},
		{"not found", canvas.ErrNotFound, http.StatusNotFound},
		{"out of range", canvas.ErrIndexOutOfRange, http.StatusBadRequest},
		{"invalid color", canvas.ErrInvalidColor, http.StatusBadRequest},
		{"empty identity", canvas.ErrEmptyIdentity, http.StatusBadRequest},
		{"not initialized", canvas.ErrNotInitialized, http.StatusServiceUnavailable},
		{"invariant", &canvas.InvariantViolationError{Slot: 3, Err: canvas.ErrIndexOutOfRange}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, StatusFor(tt.err))
		})
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodPost, "/pixels", canvas.BuyRequest{Color: 1}, buyer("alice"))
	do(t, s, http.MethodPost, "/pixels", canvas.BuyRequest{Color: 2}, buyer("bob"))

	w := do(t, s, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `canvas_purchases_total{result="committed"} 1`)
	assert.Contains(t, body, `canvas_purchases_total{result="already_exists"} 1`)
	assert.Contains(t, body, `canvas_http_requests_total{method="POST",path="/pixels",status="201"} 1`)
}

func TestStartShutdown(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Start("127.0.0.1:0"))
	require.NotEmpty(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}

func TestStart_AddressInUse(t *testing.T) {
	first := newTestServer(t)
	require.NoError(t, first.Start("127.0.0.1:0"))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		first.Shutdown(ctx)
	})

	second := newTestServer(t)
	err := second.Start(first.Addr())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen on")
}

// readFailingStore commits purchases but fails every read afterwards.
type readFailingStore struct {
	*canvas.Canvas
}

func (s readFailingStore) GetPixel(ctx context.Context, x, y uint32) (*canvas.PixelRecord, error) {
	return nil, errors.New("read unavailable")
}

func (s readFailingStore) GetColor(ctx context.Context, x, y uint32) (uint32, error) {
	return 0, errors.New("read unavailable")
}

func TestBuy_ResponseDoesNotDependOnRead(t *testing.T) {
	s := New(readFailingStore{canvas.Genesis("creator")}, nil, zerolog.Nop())

	req := canvas.BuyRequest{X: 2, Y: 3, Color: 0xABCDEF, Price: 7, ForSale: true, Message: "mine"}
	w := do(t, s, http.MethodPost, "/pixels", req, buyer("alice"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created canvas.PixelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, canvas.PixelResponse{
		X:     2,
		Y:     3,
		Color: 0xABCDEF,
		PixelData: canvas.PixelRecord{
			Owner:   "alice",
			Price:   7,
			ForSale: true,
			Message: "mine",
		},
	}, created)
}
