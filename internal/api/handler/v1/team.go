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

type TeamService interface {
	CreateTeam(ctx context.Context, eventID, leaderID uint, teamName string) (domain.Team, error)
	JoinByInvite(ctx context.Context, inviteCode string, userID uint) (domain.Team, error)
	AcceptMember(ctx context.Context, teamID, memberID, callerID uint) (domain.Team, error)
	GetTeam(ctx context.Context, id uint) (domain.Team, error)
	GetTeamForUser(ctx context.Context, eventID, userID uint) (domain.Team, error)
}

type TeamHandler struct {
	svc  TeamService
	uSvc UserService
}

func NewTeamHandler(svc TeamService, uSvc UserService) *TeamHandler {
	return &TeamHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateTeam godoc
// @Summary      Create a team
// @Description  Creates a team for a team-based event with the caller as leader. The leader counts as an accepted member immediately.
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        input    body      request.CreateTeamRequest  true  "Team details"
// @Success      201      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/teams [post]
// @Security     BearerAuth
func (h *TeamHandler) HandleCreateTeam(ctx *gin.Context) {
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

	var input request.CreateTeamRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.CreateTeam(ctx.Request.Context(), uint(eventID), user.ID, input.TeamName)
	if err != nil {
		h.renderTeamErr(ctx, "HandleCreateTeam", err)
		return
	}

	ctx.JSON(http.StatusCreated, team)
}

// HandleJoinTeam godoc
// @Summary      Join a team by invite code
// @Description  Adds the caller as a pending member of the team behind the invite code. Joining a team the caller already belongs to returns the team unchanged; the leader cannot join their own team.
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        input  body      request.JoinTeamRequest  true  "Invite code"
// @Success      200    {object}  domain.Team
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /teams/join [post]
// @Security     BearerAuth
func (h *TeamHandler) HandleJoinTeam(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.JoinTeamRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	team, err := h.svc.JoinByInvite(ctx.Request.Context(), input.InviteCode, user.ID)
	if err != nil {
		h.renderTeamErr(ctx, "HandleJoinTeam", err)
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleAcceptMember godoc
// @Summary      Accept a pending team member
// @Description  Leader-only. Accepting the member that fills the team completes it and registers every accepted member.
// @Tags         teams
// @Produce      json
// @Param        teamID    path      int  true  "Team ID"
// @Param        memberID  path      int  true  "Team member ID"
// @Success      200       {object}  domain.Team
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /teams/{teamID}/members/{memberID}/accept [patch]
// @Security     BearerAuth
func (h *TeamHandler) HandleAcceptMember(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teamID, err := strconv.ParseUint(ctx.Param("teamID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid team ID: %w", err)))
		return
	}
	memberID, err := strconv.ParseUint(ctx.Param("memberID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid member ID: %w", err)))
		return
	}

	team, err := h.svc.AcceptMember(ctx.Request.Context(), uint(teamID), uint(memberID), user.ID)
	if err != nil {
		h.renderTeamErr(ctx, "HandleAcceptMember", err)
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleGetTeam godoc
// @Summary      Get a team
// @Tags         teams
// @Produce      json
// @Param        teamID  path      int  true  "Team ID"
// @Success      200     {object}  domain.Team
// @Failure      400     {object}  response.Err
// @Failure      401     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /teams/{teamID} [get]
// @Security     BearerAuth
func (h *TeamHandler) HandleGetTeam(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	teamID, err := strconv.ParseUint(ctx.Param("teamID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid team ID: %w", err)))
		return
	}

	team, err := h.svc.GetTeam(ctx.Request.Context(), uint(teamID))
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("team", "ID", teamID))
			return
		}

		err = fmt.Errorf("HandleGetTeam -> h.svc.GetTeam -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, team)
}

// HandleGetMyTeam godoc
// @Summary      Get the caller's team for an event
// @Tags         teams
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200      {object}  domain.Team
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/team [get]
// @Security     BearerAuth
func (h *TeamHandler) HandleGetMyTeam(ctx *gin.Context) {
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

	team, err := h.svc.GetTeamForUser(ctx.Request.Context(), uint(eventID), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("team", "eventID", eventID))
			return
		}

		err = fmt.Errorf("HandleGetMyTeam -> h.svc.GetTeamForUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, team)
}

func (h *TeamHandler) renderTeamErr(ctx *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrInvalidInviteCode),
		errors.Is(err, service.ErrMemberNotFound):
		response.RenderErr(ctx, response.NewErr(http.StatusNotFound, err))
	case errors.Is(err, service.ErrNotTeamLeader),
		errors.Is(err, service.ErrNotEligible):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrAlreadyInTeam),
		errors.Is(err, service.ErrLeaderCannotJoin),
		errors.Is(err, service.ErrTeamAlreadyComplete),
		errors.Is(err, service.ErrMemberNotPending):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrEventNotTeamBased),
		errors.Is(err, service.ErrEventNotOpen),
		errors.Is(err, service.ErrDeadlinePassed):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("%v -> %w", handler, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
