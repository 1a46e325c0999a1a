package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"github.com/mchic/setlist/internal/model"
	"github.com/mchic/setlist/internal/service"
	"github.com/mchic/setlist/internal/store"
	"github.com/mchic/setlist/pkg/response"
)

var errTrailingData = errors.New("unexpected data after JSON body")

type SongHandler struct {
	service *service.SongService
	logger  *log.Logger
}

func NewSongHandler(svc *service.SongService, logger *log.Logger) *SongHandler {
	return &SongHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/songs
func (h *SongHandler) List(c *fiber.Ctx) error {
	songs, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, songs)
}

// Create handles POST /api/songs
func (h *SongHandler) Create(c *fiber.Ctx) error {
	raw, err := decodeObject(c.Body())
	if err != nil {
		return response.ValidationError(c, response.MessageInvalidBody)
	}

	song, err := h.service.Create(c.UserContext(), raw)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, song)
}

// Update handles PUT /api/songs/:id
func (h *SongHandler) Update(c *fiber.Ctx) error {
	raw, err := decodeObject(c.Body())
	if err != nil {
		return response.ValidationError(c, response.MessageInvalidBody)
	}

	song, err := h.service.Update(c.UserContext(), c.Params("id"), raw)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, song)
}

// Delete handles DELETE /api/songs/:id
func (h *SongHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return response.NoContent(c)
}

// Reset handles POST /api/reset
func (h *SongHandler) Reset(c *fiber.Ctx) error {
	songs, err := h.service.Reset(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, model.ResetResponse{OK: true, Count: len(songs)})
}

// fail maps service errors to responses. Internal causes are logged, never returned.
func (h *SongHandler) fail(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.ValidationError(c, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		return response.NotFound(c, response.MessageNotFound)
	case errors.Is(err, service.ErrResetUnsupported):
		return fiber.ErrNotFound
	default:
		h.logger.Error("song request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return response.ServiceError(c)
	}
}

// decodeObject parses a JSON object body. An empty body or null yields an
// empty map; any other non-object is an error. Numbers stay json.Number so
// an out-of-range literal reaches normalization instead of failing here.
func decodeObject(body []byte) (map[string]any, error) {
	raw := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return raw, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
