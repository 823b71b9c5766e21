package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/festhub/festhub-api/internal/api/handler/v1/request"
	"github.com/festhub/festhub-api/internal/api/handler/v1/response"
	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository"
	"github.com/festhub/festhub-api/internal/service"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event, organizerID uint) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListPublished(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id uint, update domain.EventUpdate, organizerID uint) (domain.Event, error)
	PublishEvent(ctx context.Context, id, organizerID uint) (domain.Event, error)
	AdvanceEventStatus(ctx context.Context, id uint, to domain.EventStatus, organizerID uint) (domain.Event, error)
	DeleteEvent(ctx context.Context, id, organizerID uint) error
}

// RegistrationLookup answers "is this caller registered for this event".
type RegistrationLookup interface {
	GetForParticipantEvent(ctx context.Context, eventID, participantID uint) (domain.Registration, error)
}

type EventHandler struct {
	svc  EventService
	regs RegistrationLookup
	uSvc UserService
}

func NewEventHandler(svc EventService, regs RegistrationLookup, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		regs: regs,
		uSvc: uSvc,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Creates a draft event. Only organizers can create events.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event details"
// @Success      201    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	if user.Role != domain.RoleOrganizer && user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an organizer", user.ID)))
		return
	}

	var input request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	input.Normalize()

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), input.ToDomain(), user.ID)
	if err != nil {
		err = fmt.Errorf("HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListEvents godoc
// @Summary      List published events
// @Tags         events
// @Produce      json
// @Param        search       query     string  false  "Search in name and description"
// @Param        eventType    query     string  false  "Filter by event type"
// @Param        eligibility  query     string  false  "Filter by eligibility"
// @Param        tag          query     string  false  "Filter by tag"
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	filter := repository.EventFilter{
		Search:      ctx.Query("search"),
		EventType:   domain.EventType(ctx.Query("eventType")),
		Eligibility: domain.Eligibility(ctx.Query("eligibility")),
		Tag:         ctx.Query("tag"),
	}
	if after := ctx.Query("startAfter"); after != "" {
		if t, err := time.Parse(time.RFC3339, after); err == nil {
			filter.StartAfter = &t
		}
	}
	if before := ctx.Query("startBefore"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			filter.StartBefore = &t
		}
	}

	events, err := h.svc.ListPublished(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("HandleListEvents -> h.svc.ListPublished -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Description  Event detail with derived phase, available slots and, for the caller, their registration state and ticket.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  response.EventDetail
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
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

	event, err := h.svc.GetEvent(ctx.Request.Context(), uint(eventID))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	// Drafts stay private to their organizer.
	if event.Status == domain.EventStatusDraft && event.OrganizerID != user.ID {
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		return
	}

	detail := response.EventDetail{
		Event:          event,
		Phase:          event.Phase(time.Now()),
		AvailableSlots: event.AvailableSlots(),
	}

	registration, err := h.regs.GetForParticipantEvent(ctx.Request.Context(), uint(eventID), user.ID)
	switch {
	case err == nil:
		detail.IsRegistered = true
		detail.MyTicket = registration.TicketID
	case errors.Is(err, service.ErrRegistrationNotFound):
		// Not registered; nothing to decorate.
	default:
		err = fmt.Errorf("HandleGetEvent -> h.regs.GetForParticipantEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// HandleListOrganizedEvents godoc
// @Summary      List the caller's events
// @Description  Returns every event the authenticated organizer owns, drafts included.
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /organizer/events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListOrganizedEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.svc.ListByOrganizer(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("HandleListOrganizedEvents -> h.svc.ListByOrganizer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Drafts update freely. Published events only accept a new description, a later deadline, a higher limit, and form fields while the form is unlocked.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        input    body      request.UpdateEventRequest  true  "Fields to change"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [patch]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
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

	var input request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateEvent(ctx.Request.Context(), uint(eventID), input.ToUpdate(), user.ID)
	if err != nil {
		h.renderEventErr(ctx, "HandleUpdateEvent", eventID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandlePublishEvent godoc
// @Summary      Publish a draft event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/publish [post]
// @Security     BearerAuth
func (h *EventHandler) HandlePublishEvent(ctx *gin.Context) {
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

	published, err := h.svc.PublishEvent(ctx.Request.Context(), uint(eventID), user.ID)
	if err != nil {
		h.renderEventErr(ctx, "HandlePublishEvent", eventID, err)
		return
	}

	ctx.JSON(http.StatusOK, published)
}

// HandleAdvanceStatus godoc
// @Summary      Advance the event lifecycle
// @Description  Moves the event forward: Published to Ongoing or Closed, then to Completed. No transition goes backward.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        input    body      request.UpdateEventRequest  true  "Target status"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/status [post]
// @Security     BearerAuth
func (h *EventHandler) HandleAdvanceStatus(ctx *gin.Context) {
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

	var input request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if input.Status == nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("status is required")))
		return
	}

	updated, err := h.svc.AdvanceEventStatus(ctx.Request.Context(), uint(eventID), domain.EventStatus(*input.Status), user.ID)
	if err != nil {
		h.renderEventErr(ctx, "HandleAdvanceStatus", eventID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteEvent godoc
// @Summary      Delete a draft event
// @Description  Only drafts can be deleted. Published events are closed via the status lifecycle instead.
// @Tags         events
// @Produce      json
// @Param        eventID  path  int  true  "Event ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
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

	if err := h.svc.DeleteEvent(ctx.Request.Context(), uint(eventID), user.ID); err != nil {
		h.renderEventErr(ctx, "HandleDeleteEvent", eventID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *EventHandler) renderEventErr(ctx *gin.Context, handler string, eventID uint64, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrNotEventOwner):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrEventNotDraft),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrFormLocked):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrDeadlineNotLater),
		errors.Is(err, service.ErrLimitNotIncreased),
		errors.Is(err, service.ErrFieldNotUpdatable):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("%v -> %w", handler, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
