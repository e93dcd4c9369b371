package http

import (
	"net/http"

	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/internal/review/service"
	"go-stock-newsroom/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SymbolHandler handles HTTP requests for the symbol registry.
type SymbolHandler struct {
	symbolService service.SymbolService
	logger        *logger.Logger
}

// NewSymbolHandler creates a new SymbolHandler.
func NewSymbolHandler(symbolService service.SymbolService, log *logger.Logger) *SymbolHandler {
	return &SymbolHandler{symbolService: symbolService, logger: log}
}

// RegisterRoutes registers the symbol routes to the Echo group.
func (h *SymbolHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAllSymbols)
	g.POST("", h.CreateSymbol)
}

func (h *SymbolHandler) GetAllSymbols(c echo.Context) error {
	symbols, err := h.symbolService.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list symbols", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, symbols)
}

func (h *SymbolHandler) CreateSymbol(c echo.Context) error {
	var req dto.CreateSymbolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	symbol, err := h.symbolService.Create(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, symbol)
}
