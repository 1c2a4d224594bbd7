package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/shared"
)

type LocationHandler struct {
	locationSvc LocationServiceInterface
}

func NewLocationHandler(locationSvc LocationServiceInterface) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// @Summary Report Location
// @Description Store the caller's position and fan it out to session subscribers
// @Tags locations
// @Accept json
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Param request body dto.ReportLocationRequest true "Position sample"
// @Success 200 {object} shared.Response{data=string}
// @Router /api/v1/sessions/{sessionId}/location [post]
func (h *LocationHandler) ReportLocation(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	userID := c.Locals(shared.UserID).(string)

	var req dto.ReportLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid location payload")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed").WithData(dto.FormatValidationErrors(err))
	}

	if err := h.locationSvc.ReportLocation(c.Context(), sessionID, userID, req.Latitude, req.Longitude, req.Timestamp); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// StreamLocations forwards the session's location topic over a websocket.
// Delivery is at-most-once: a slow client simply misses updates and converges
// on the next report.
func (h *LocationHandler) StreamLocations(c *websocket.Conn) {
	sessionID := c.Params("sessionId")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.locationSvc.Subscribe(ctx, sessionID)
	if err != nil {
		_ = c.Close()
		return
	}
	defer sub.Close()

	// Reads only serve to detect the client going away.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}
