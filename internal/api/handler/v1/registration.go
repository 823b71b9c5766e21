package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/festhub/festhub-api/internal/api/handler/v1/request"
	"github.com/festhub/festhub-api/internal/api/handler/v1/response"
	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, eventID, participantID uint, input service.RegisterInput) (domain.Registration, error)
	GetRegistration(ctx context.Context, id uint) (domain.Registration, error)
	ListForParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error)
	ListForEvent(ctx context.Context, eventID, organizerID uint) ([]domain.Registration, error)
	ChangeStatus(ctx context.Context, registrationID uint, status domain.RegistrationStatus, organizerID uint) error
}

type RegistrationHandler struct {
	svc  RegistrationService
	uSvc UserService
}

func NewRegistrationHandler(svc RegistrationService, uSvc UserService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleRegister godoc
// @Summary      Register for an event
// @Description  Registers the caller for a published event. Capacity and merchandise stock are claimed atomically; the ticket email is sent asynchronously.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                      true  "Event ID"
// @Param        input    body      request.RegisterRequest  true  "Form responses and merchandise options"
// @Success      201      {object}  domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/register [post]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
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

	created, err := h.svc.Register(ctx.Request.Context(), uint(eventID), user.ID, service.RegisterInput{
		FormResponses: input.FormResponses,
		Merchandise:   input.ToMerchandise(),
	})
	if err != nil {
		h.renderRegisterErr(ctx, eventID, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *RegistrationHandler) renderRegisterErr(ctx *gin.Context, eventID uint64, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrEventFull),
		errors.Is(err, service.ErrStockInsufficient):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrNotEligible):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrEventNotOpen),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrTeamEventRegistration),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrPurchaseLimitExceeded),
		errors.Is(err, service.ErrInvalidMerchOption),
		errors.Is(err, service.ErrMissingFormField):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

// HandleListMyRegistrations godoc
// @Summary      List the caller's registrations
// @Description  Dashboard view: pending and approved registrations under "active", everything settled under "past".
// @Tags         registrations
// @Produce      json
// @Success      200  {object}  response.MyRegistrations
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleListMyRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrations, err := h.svc.ListForParticipant(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("HandleListMyRegistrations -> h.svc.ListForParticipant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	dashboard := response.MyRegistrations{}
	for _, registration := range registrations {
		switch registration.Status {
		case domain.RegistrationStatusPending, domain.RegistrationStatusApproved:
			dashboard.Active = append(dashboard.Active, registration)
		default:
			dashboard.Past = append(dashboard.Past, registration)
		}
	}

	ctx.JSON(http.StatusOK, dashboard)
}

// HandleListEventRegistrations godoc
// @Summary      List registrations for an event
// @Description  Organizer-only view of everyone registered for an event the caller owns.
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleListEventRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	registrations, err := h.svc.ListForEvent(ctx.Request.Context(), uint(eventID), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleListEventRegistrations -> h.svc.ListForEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, registrations)
}

// HandleChangeRegistrationStatus godoc
// @Summary      Change a registration's status
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationID  path      int                                      true  "Registration ID"
// @Param        input           body      request.ChangeRegistrationStatusRequest  true  "New status"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/{registrationID}/status [patch]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleChangeRegistrationStatus(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrationID, err := strconv.ParseUint(ctx.Param("registrationID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid registration ID: %w", err)))
		return
	}

	var input request.ChangeRegistrationStatusRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err = h.svc.ChangeStatus(ctx.Request.Context(), uint(registrationID), domain.RegistrationStatus(input.Status), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", registrationID))
		case errors.Is(err, service.ErrNotEventOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleChangeRegistrationStatus -> h.svc.ChangeStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "registration status updated"})
}
