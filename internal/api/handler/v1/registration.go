package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/eventure/eventure-api/internal/api/handler/v1/request"
	"github.com/eventure/eventure-api/internal/api/handler/v1/response"
	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, eventID, userID uint, input service.RegisterInput) (domain.Registration, error)
	Cancel(ctx context.Context, registrationID, userID uint) error
	GetRegistration(ctx context.Context, id uint) (domain.Registration, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Registration, error)
	RemainingSeats(ctx context.Context, eventID uint) (int, error)
}

type EventReader interface {
	GetEvent(ctx context.Context, eventID uint) (domain.Event, error)
}

type RegistrationHandler struct {
	svc    RegistrationService
	events EventReader
}

func NewRegistrationHandler(svc RegistrationService, events EventReader) *RegistrationHandler {
	return &RegistrationHandler{
		svc:    svc,
		events: events,
	}
}

// HandleRegister godoc
// @Summary      Register for an event
// @Description  Allocates seats and issues a ticket; paid events are charged before the seats are committed.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                      true  "Event ID"
// @Param        input    body      request.RegisterRequest  true  "Registration details"
// @Success      201      {object}  domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      402      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations [post]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var input request.RegisterRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.Register(ctx.Request.Context(), eventID, userID, service.RegisterInput{
		TicketCount:    input.TicketCount,
		PaymentMethod:  input.PaymentMethod,
		ContactNumber:  input.ContactNumber,
		SpecialRequest: input.SpecialRequest,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrEventFull):
			remaining, seatsErr := h.svc.RemainingSeats(ctx.Request.Context(), eventID)
			if seatsErr != nil {
				remaining = 0
			}
			ctx.AbortWithStatusJSON(http.StatusConflict, response.EventFullResponse{
				Error:          err.Error(),
				RemainingSeats: remaining,
			})
		case errors.Is(err, service.ErrHoldExpired):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrEventNotOpen):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		case errors.Is(err, service.ErrInvalidRequest):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrPaymentDeclined):
			response.RenderErr(ctx, response.ErrPaymentDeclined(err))
		default:
			err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, registration)
}

// HandleListMyRegistrations godoc
// @Summary      List the caller's registrations
// @Tags         registrations
// @Produce      json
// @Success      200  {array}   domain.Registration
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleListMyRegistrations(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrations, err := h.svc.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyRegistrations -> h.svc.ListByUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// HandleCancel godoc
// @Summary      Cancel a registration
// @Description  Frees the seats when the event allows cancellation.
// @Tags         registrations
// @Param        registrationID  path  int  true  "Registration ID"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/{registrationID} [delete]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleCancel(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrationID, err := parseUintParam(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.Cancel(ctx.Request.Context(), registrationID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", registrationID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleCancel -> h.svc.Cancel -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ticketQRPayload is the JSON encoded into the ticket QR image.
type ticketQRPayload struct {
	Event    string `json:"event"`
	Ticket   string `json:"ticket"`
	Date     string `json:"date"`
	Verified bool   `json:"verified"`
}

// HandleTicketQRCode godoc
// @Summary      Render a registration's ticket as a QR code
// @Tags         registrations
// @Produce      png
// @Param        registrationID  path  int  true  "Registration ID"
// @Success      200  {file}    file
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/{registrationID}/qrcode [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleTicketQRCode(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrationID, err := parseUintParam(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.GetRegistration(ctx.Request.Context(), registrationID)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", registrationID))
			return
		}

		err = fmt.Errorf("v1.HandleTicketQRCode -> h.svc.GetRegistration -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if registration.UserID != userID {
		response.RenderErr(ctx, response.ErrPermissionDenied(
			fmt.Errorf("registration %v does not belong to user %v", registrationID, userID)))
		return
	}

	event, err := h.events.GetEvent(ctx.Request.Context(), registration.EventID)
	if err != nil {
		err = fmt.Errorf("v1.HandleTicketQRCode -> h.events.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	payload, err := json.Marshal(ticketQRPayload{
		Event:    event.Title,
		Ticket:   registration.TicketCode,
		Date:     event.StartsAt.Format(time.RFC3339),
		Verified: true,
	})
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		err = fmt.Errorf("v1.HandleTicketQRCode -> qrcode.Encode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}
