package handler

import (
	"errors"
	"net/http"

	"github.com/Oksidation/iq-testing-app/internal/middleware"
	"github.com/Oksidation/iq-testing-app/internal/response"
	"github.com/Oksidation/iq-testing-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionHandler serves session history and result reports.
type SessionHandler struct {
	sessionService *service.SessionService
	reportService  *service.ReportService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, reportService *service.ReportService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		reportService:  reportService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// ListSessions godoc
// GET /api/v1/sessions
// Returns the authenticated user's attempt history, newest first.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessions, err := h.sessionService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("List sessions error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, sessions)
}

// GetSession godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetOwned(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// GetReport godoc
// GET /api/v1/sessions/:session_id/report
// Returns the basic result report for a completed session.
func (h *SessionHandler) GetReport(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// GetAdvancedReport godoc
// GET /api/v1/sessions/:session_id/report/advanced
// Returns the full report with the per-question answer review. The advanced
// report must have been redeemed for this session first.
func (h *SessionHandler) GetAdvancedReport(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetAdvancedReport(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// RedeemAdvancedReport godoc
// POST /api/v1/sessions/:session_id/report/redeem
// Spends one credit to unlock the advanced report. With no credits left the
// response carries the checkout URL instead.
func (h *SessionHandler) RedeemAdvancedReport(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	resp, err := h.reportService.Redeem(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRedeemed) {
			response.Fail(c, http.StatusConflict, response.ErrAlreadyRedeemed)
			return
		}
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *SessionHandler) sessionParams(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}

	return claims, sessionID, true
}

func (h *SessionHandler) failSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotSessionOwner)
	case errors.Is(err, service.ErrSessionNotFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotFinished)
	case errors.Is(err, service.ErrSessionFailed):
		response.Fail(c, http.StatusConflict, response.ErrSessionFailed)
	case errors.Is(err, service.ErrNotRedeemed):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		h.log.Error().Err(err).Msg("Session endpoint error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
