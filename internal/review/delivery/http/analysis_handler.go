package http

import (
	"net/http"
	"strconv"

	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/internal/review/service"
	"go-stock-newsroom/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler handles HTTP requests for orchestrated analyses.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	logger          *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService, logger: log}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateAnalysis)
	g.GET("", h.GetAllAnalyses)
	g.GET("/:id", h.GetAnalysisByID)
	g.POST("/:id/cancel", h.CancelAnalysis)
}

func (h *AnalysisHandler) CreateAnalysis(c echo.Context) error {
	var req dto.CreateAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	requestedBy := c.Request().Header.Get(reviewerHeader)
	if requestedBy == "" {
		requestedBy = "api"
	}

	analysis, err := h.analysisService.Create(c.Request().Context(), &req, requestedBy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, analysis)
}

func (h *AnalysisHandler) GetAllAnalyses(c echo.Context) error {
	analyses, err := h.analysisService.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list analyses", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, analyses)
}

func (h *AnalysisHandler) GetAnalysisByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid analysis ID"})
	}

	analysis, err := h.analysisService.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}

func (h *AnalysisHandler) CancelAnalysis(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid analysis ID"})
	}

	analysis, err := h.analysisService.Cancel(c.Request().Context(), uint(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, analysis)
}
