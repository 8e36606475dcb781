package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInfo(c *gin.Context) {
	info, err := s.store.Info(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleColors(c *gin.Context) {
	resp, err := canvas.QueryColors(c.Request.Context(), s.store)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePixel(c *gin.Context) {
	x, err := parseCoord(c.Param("x"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid x: " + err.Error()})
		return
	}
	y, err := parseCoord(c.Param("y"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid y: " + err.Error()})
		return
	}

	resp, err := canvas.QueryPixel(c.Request.Context(), s.store, x, y)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBuy(c *gin.Context) {
	buyer := c.GetHeader(IdentityHeader)
	if buyer == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + IdentityHeader + " header"})
		return
	}

	var req canvas.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	err := s.store.Buy(c.Request.Context(), buyer, req)
	s.metrics.observePurchase(err)

	switch {
	case err == nil:
	case errors.Is(err, canvas.ErrEventNotPublished):
		s.logger.Warn().Err(err).Uint32("x", req.X).Uint32("y", req.Y).Msg("purchase committed without event")
	default:
		s.fail(c, err)
		return
	}

	s.logger.Info().
		Uint32("slot", canvas.Index(req.X, req.Y)).
		Str("owner", buyer).
		Uint32("color", req.Color).
		Uint64("price", req.Price).
		Msg("pixel purchased")

	// The purchase is committed; answer from the request rather than a
	// second read that could fail independently
	c.JSON(http.StatusCreated, canvas.PixelResponse{
		X:         req.X,
		Y:         req.Y,
		Color:     req.Color,
		PixelData: req.Record(buyer),
	})
}

// fail writes err with the status its kind maps to.
func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if canvas.IsInvariantViolation(err) {
		s.logger.Error().Err(err).Msg("canvas invariant violated")
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// StatusFor maps a canvas error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case canvas.IsInvariantViolation(err):
		return http.StatusInternalServerError
	case canvas.IsAlreadyExists(err):
		return http.StatusConflict
	case canvas.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrIndexOutOfRange),
		errors.Is(err, canvas.ErrInvalidColor),
		errors.Is(err, canvas.ErrEmptyIdentity):
		return http.StatusBadRequest
	case errors.Is(err, canvas.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseCoord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
