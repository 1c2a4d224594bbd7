package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/roamline/live_api/dto"
	"github.com/roamline/live_api/shared"
)

type SessionHandler struct {
	sessionSvc  SessionServiceInterface
	activitySvc ActivityServiceInterface
}

func NewSessionHandler(sessionSvc SessionServiceInterface, activitySvc ActivityServiceInterface) *SessionHandler {
	return &SessionHandler{
		sessionSvc:  sessionSvc,
		activitySvc: activitySvc,
	}
}

// @Summary Start Session
// @Description Instantiate a live session from an experience
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param experienceId path string true "Experience ID"
// @Success 201 {object} shared.Response{data=dto.StartSessionResponse}
// @Router /api/v1/experiences/{experienceId}/start [post]
func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	experienceID := c.Params("experienceId")
	userID := c.Locals(shared.UserID).(string)

	response, err := h.sessionSvc.StartSession(experienceID, userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", response)
}

// @Summary Get Session
// @Description Get a live session with its participant roster
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionDetailResponse}
// @Router /api/v1/sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	response, err := h.sessionSvc.GetSession(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary Join Session
// @Description Enroll the caller as a participant of a live session
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.ParticipantResponse}
// @Router /api/v1/sessions/{sessionId}/join [post]
func (h *SessionHandler) JoinSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	userID := c.Locals(shared.UserID).(string)

	response, err := h.sessionSvc.JoinSession(sessionID, userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary Get Current Activity
// @Description Get the activity the session pointer currently rests on, null when exhausted
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.ActivityResponse}
// @Router /api/v1/sessions/{sessionId}/activities/current [get]
func (h *SessionHandler) GetCurrentActivity(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	response, err := h.sessionSvc.GetCurrentActivity(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary Start Current Activity
// @Description Open an in-progress instance of the current activity
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 201 {object} shared.Response{data=dto.ActiveActivityResponse}
// @Router /api/v1/sessions/{sessionId}/activities/current/start [post]
func (h *SessionHandler) StartCurrentActivity(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	response, err := h.sessionSvc.StartCurrentActivity(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", response)
}

// @Summary Check In
// @Description Geofenced start: validates the caller is at the activity's location
// @Tags sessions
// @Accept json
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Param activeActivityId path string true "Active Activity ID"
// @Param request body dto.CheckInRequest true "Reported position"
// @Success 200 {object} shared.Response{data=dto.ActiveActivityResponse}
// @Router /api/v1/sessions/{sessionId}/activities/{activeActivityId}/checkin [post]
func (h *SessionHandler) CheckIn(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	activeActivityID := c.Params("activeActivityId")

	var req dto.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid check-in payload")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return shared.NewBadRequestError(err, "Validation failed").WithData(dto.FormatValidationErrors(err))
	}

	response, err := h.sessionSvc.CheckInAndStart(sessionID, activeActivityID, req.Latitude, req.Longitude)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary Complete Current Activity
// @Description Close the open activity and advance the session pointer
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.ActiveExperienceResponse}
// @Router /api/v1/sessions/{sessionId}/activities/current/complete [post]
func (h *SessionHandler) CompleteCurrentActivity(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	response, err := h.sessionSvc.CompleteCurrentActivity(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary Skip Current Activity
// @Description Advance the session pointer without completing the activity
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.ActiveExperienceResponse}
// @Router /api/v1/sessions/{sessionId}/activities/current/skip [post]
func (h *SessionHandler) SkipCurrentActivity(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	response, err := h.sessionSvc.SkipCurrentActivity(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary End Session
// @Description Terminate a session explicitly, regardless of pointer position
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.ActiveExperienceResponse}
// @Router /api/v1/sessions/{sessionId}/end [post]
func (h *SessionHandler) EndSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	response, err := h.sessionSvc.EndSession(sessionID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}

// @Summary Submit Activity Photo
// @Description Upload the prompted photo for an in-progress activity
// @Tags activities
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param activeActivityId path string true "Active Activity ID"
// @Param photo formData file true "Photo file (JPG, PNG, WEBP)"
// @Success 200 {object} shared.Response{data=dto.PhotoUploadResponse}
// @Router /api/v1/activities/{activeActivityId}/photo [post]
func (h *SessionHandler) SubmitPhoto(c *fiber.Ctx) error {
	activeActivityID := c.Params("activeActivityId")

	file, err := c.FormFile("photo")
	if err != nil {
		return shared.NewBadRequestError(err, "No photo file provided")
	}

	if file.Size > 10*1024*1024 {
		return shared.NewBadRequestError(nil, "Photo file too large. Maximum size: 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return shared.NewBadRequestError(err, "Failed to read photo file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return shared.NewBadRequestError(err, "Failed to read photo file")
	}

	response, err := h.activitySvc.SubmitPhoto(activeActivityID, data, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, response)
}
