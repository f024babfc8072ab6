package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventure/eventure-api/internal/api/handler/v1/request"
	"github.com/eventure/eventure-api/internal/api/handler/v1/response"
	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/pkg/storage"
	"github.com/eventure/eventure-api/internal/service"
)

type CatalogService interface {
	Submit(ctx context.Context, draft domain.Event, hostID uint) (domain.Event, error)
	Decide(ctx context.Context, eventID uint, approve bool) (domain.Event, error)
	SetActive(ctx context.Context, eventID, hostID uint, active bool) (domain.Event, error)
	AttachImage(ctx context.Context, eventID, hostID uint, data []byte) (string, error)
	GetEvent(ctx context.Context, eventID uint) (domain.Event, error)
	ListPublic(ctx context.Context) ([]domain.Event, error)
	ListByHost(ctx context.Context, hostID uint) ([]domain.Event, error)
	ListPending(ctx context.Context) ([]domain.Event, error)
}

type SeatCounter interface {
	RemainingSeats(ctx context.Context, eventID uint) (int, error)
	ListByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error)
}

type AuthorizationGate interface {
	Require(ctx context.Context, userID uint, role domain.Role) error
}

type EventHandler struct {
	svc   CatalogService
	seats SeatCounter
	gate  AuthorizationGate
}

func NewEventHandler(svc CatalogService, seats SeatCounter, gate AuthorizationGate) *EventHandler {
	return &EventHandler{
		svc:   svc,
		seats: seats,
		gate:  gate,
	}
}

// HandleListEvents godoc
// @Summary      List approved events
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListPublic(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListPublic -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleGetSeats godoc
// @Summary      Get live remaining seats for an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.SeatsResponse
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/seats [get]
func (h *EventHandler) HandleGetSeats(ctx *gin.Context) {
	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	remaining, err := h.seats.RemainingSeats(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetSeats -> h.seats.RemainingSeats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.SeatsResponse{
		EventID:        eventID,
		RemainingSeats: remaining,
	})
}

// HandleCreateEvent godoc
// @Summary      Submit a new event for approval
// @Description  Creates the event in pending state; an admin decision makes it public.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event draft"
// @Success      201    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleHost); err != nil {
		renderGateErr(ctx, err)
		return
	}

	var input request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	startsAt, err := time.Parse(time.RFC3339, input.StartsAt)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid starts_at: %w", err)))
		return
	}

	var deadline *time.Time
	if input.RegistrationDeadline != "" {
		parsed, err := time.Parse(time.RFC3339, input.RegistrationDeadline)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid registration_deadline: %w", err)))
			return
		}
		deadline = &parsed
	}

	draft := domain.Event{
		Title:                input.Title,
		Description:          input.Description,
		StartsAt:             startsAt,
		Location:             input.Location,
		Category:             input.Category,
		Price:                input.Price,
		MaxAttendees:         input.MaxAttendees,
		RegistrationDeadline: deadline,
		MaxTicketsPerUser:    input.MaxTicketsPerUser,
		AllowCancellation:    input.AllowCancellation,
		EventType:            domain.EventType(input.EventType),
		TeamSize:             input.TeamSize,
	}

	created, err := h.svc.Submit(ctx.Request.Context(), draft, userID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.Submit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUploadImage godoc
// @Summary      Attach an image to an event
// @Tags         events
// @Accept       multipart/form-data
// @Produce      json
// @Param        eventID  path      int   true  "Event ID"
// @Param        image    formData  file  true  "Image file"
// @Success      200      {object}  response.ImageResponse
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/image [post]
// @Security     BearerAuth
func (h *EventHandler) HandleUploadImage(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleHost); err != nil {
		renderGateErr(ctx, err)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("image file is required: %w", err)))
		return
	}

	opened, err := file.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	url, err := h.svc.AttachImage(ctx.Request.Context(), eventID, userID, data)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotAnImage):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleUploadImage -> h.svc.AttachImage -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.ImageResponse{ImageURL: url})
}

// HandleSetStatus godoc
// @Summary      Pause or resume registrations on an event
// @Description  Toggles the active flag; independent of the admin approval decision.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                    true  "Event ID"
// @Param        input    body      request.StatusRequest  true  "Active flag"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/status [patch]
// @Security     BearerAuth
func (h *EventHandler) HandleSetStatus(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleHost); err != nil {
		renderGateErr(ctx, err)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var input request.StatusRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.SetActive(ctx.Request.Context(), eventID, userID, *input.Active)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleSetStatus -> h.svc.SetActive -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDecideEvent godoc
// @Summary      Approve or reject a pending event
// @Description  One-way transition; an already-decided event cannot be re-reviewed.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                      true  "Event ID"
// @Param        input    body      request.DecisionRequest  true  "Decision"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/decision [post]
// @Security     BearerAuth
func (h *EventHandler) HandleDecideEvent(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleAdmin); err != nil {
		renderGateErr(ctx, err)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var input request.DecisionRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.Decide(ctx.Request.Context(), eventID, input.Decision == "approve")
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrInvalidState):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleDecideEvent -> h.svc.Decide -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleListPendingEvents godoc
// @Summary      List events awaiting an approval decision
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/events/pending [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListPendingEvents(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleAdmin); err != nil {
		renderGateErr(ctx, err)
		return
	}

	events, err := h.svc.ListPending(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListPendingEvents -> h.svc.ListPending -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListHostEvents godoc
// @Summary      List the caller's hosted events
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /host/events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListHostEvents(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleHost); err != nil {
		renderGateErr(ctx, err)
		return
	}

	events, err := h.svc.ListByHost(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListHostEvents -> h.svc.ListByHost -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListEventRegistrations godoc
// @Summary      List registrations for a hosted event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.Registration
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListEventRegistrations(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.gate.Require(ctx.Request.Context(), userID, domain.RoleHost); err != nil {
		renderGateErr(ctx, err)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleListEventRegistrations -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if event.HostID != userID {
		response.RenderErr(ctx, response.ErrPermissionDenied(
			fmt.Errorf("user %v does not host event %v", userID, eventID)))
		return
	}

	registrations, err := h.seats.ListByEvent(ctx.Request.Context(), eventID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEventRegistrations -> h.seats.ListByEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// renderGateErr maps authorization gate failures: missing identity is
// 401, missing role is 403.
func renderGateErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.RenderErr(ctx, response.ErrUnauthorized(err))
	case errors.Is(err, service.ErrForbidden):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
