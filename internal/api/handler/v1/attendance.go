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
	"github.com/festhub/festhub-api/internal/repository"
	"github.com/festhub/festhub-api/internal/service"
)

type AttendanceService interface {
	ScanAndMark(ctx context.Context, eventID uint, ticketID string, scannerID uint) (domain.Registration, error)
	ManualOverride(ctx context.Context, eventID, registrationID uint, desired bool, reason string, performedBy uint) (domain.Registration, error)
	Report(ctx context.Context, eventID, organizerID uint) (service.AttendanceReport, error)
	AuditTrail(ctx context.Context, eventID, organizerID uint) ([]domain.AuditLog, error)
}

type AttendanceHandler struct {
	svc  AttendanceService
	uSvc UserService
}

func NewAttendanceHandler(svc AttendanceService, uSvc UserService) *AttendanceHandler {
	return &AttendanceHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleScanTicket godoc
// @Summary      Scan a ticket at the gate
// @Description  Marks attendance for the scanned ticket. A second scan of the same ticket returns 409 with the time of the first check-in.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        input    body      request.ScanTicketRequest  true  "Scanned ticket"
// @Success      200      {object}  domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendance/scan [post]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleScanTicket(ctx *gin.Context) {
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

	var input request.ScanTicketRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.ScanAndMark(ctx.Request.Context(), uint(eventID), input.TicketID, user.ID)
	if err != nil {
		var attended *service.AlreadyAttendedError
		switch {
		case errors.As(err, &attended):
			response.RenderErr(ctx, response.ErrConflict(attended))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ticketID", input.TicketID))
		case errors.Is(err, service.ErrNotEventOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRegistrationNotActive):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleScanTicket -> h.svc.ScanAndMark -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, registration)
}

// HandleOverrideAttendance godoc
// @Summary      Manually override attendance
// @Description  Sets the attendance flag by hand, with a mandatory reason. Every override lands in the audit trail; overriding to the current state is rejected.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        eventID         path      int                                true  "Event ID"
// @Param        registrationID  path      int                                true  "Registration ID"
// @Param        input           body      request.OverrideAttendanceRequest  true  "Desired state and reason"
// @Success      200             {object}  domain.Registration
// @Failure      400             {object}  response.Err
// @Failure      401             {object}  response.Err
// @Failure      403             {object}  response.Err
// @Failure      404             {object}  response.Err
// @Failure      409             {object}  response.Err
// @Failure      500             {object}  response.Err
// @Router       /events/{eventID}/attendance/{registrationID} [patch]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleOverrideAttendance(ctx *gin.Context) {
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
	registrationID, err := strconv.ParseUint(ctx.Param("registrationID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid registration ID: %w", err)))
		return
	}

	var input request.OverrideAttendanceRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	registration, err := h.svc.ManualOverride(ctx.Request.Context(), uint(eventID), uint(registrationID), *input.Attended, input.Reason, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", registrationID))
		case errors.Is(err, service.ErrNotEventOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrReasonRequired):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, repository.ErrAttendanceUnchanged):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleOverrideAttendance -> h.svc.ManualOverride -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, registration)
}

// HandleAttendanceReport godoc
// @Summary      Attendance report for an event
// @Tags         attendance
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  service.AttendanceReport
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendance/report [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleAttendanceReport(ctx *gin.Context) {
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

	report, err := h.svc.Report(ctx.Request.Context(), uint(eventID), user.ID)
	if err != nil {
		h.renderReportErr(ctx, "HandleAttendanceReport", eventID, err)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleAuditTrail godoc
// @Summary      Attendance override audit trail
// @Tags         attendance
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {array}   domain.AuditLog
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendance/audit [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleAuditTrail(ctx *gin.Context) {
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

	logs, err := h.svc.AuditTrail(ctx.Request.Context(), uint(eventID), user.ID)
	if err != nil {
		h.renderReportErr(ctx, "HandleAuditTrail", eventID, err)
		return
	}

	ctx.JSON(http.StatusOK, logs)
}

func (h *AttendanceHandler) renderReportErr(ctx *gin.Context, handler string, eventID uint64, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrNotEventOwner):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	default:
		err = fmt.Errorf("%v -> %w", handler, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
