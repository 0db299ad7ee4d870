package handler

import (
	"errors"
	"net/http"

	"github.com/Oksidation/iq-testing-app/internal/response"
	"github.com/Oksidation/iq-testing-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogHandler serves the test catalog.
type CatalogHandler struct {
	catalogService *service.CatalogService
	log            zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		log:            log.With().Str("component", "catalog_handler").Logger(),
	}
}

// ListTests godoc
// GET /api/v1/tests
func (h *CatalogHandler) ListTests(c *gin.Context) {
	tests, err := h.catalogService.ListTests(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("List tests error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, tests)
}

// GetTest godoc
// GET /api/v1/tests/:test_id
func (h *CatalogHandler) GetTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	t, err := h.catalogService.GetTest(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Get test error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, t)
}

// GetTestPaper godoc
// GET /api/v1/tests/:test_id/paper
// Returns the taker-facing question list with correct options stripped.
func (h *CatalogHandler) GetTestPaper(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.catalogService.GetTestPaper(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Get test paper error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}
