package http

import (
	"net/http"
	"strconv"

	"go-stock-newsroom/internal/review/dto"
	"go-stock-newsroom/internal/review/service"
	"go-stock-newsroom/pkg/logger"

	"github.com/labstack/echo/v4"
)

// reviewerHeader carries the identity of the human acting on an article.
const reviewerHeader = "X-Reviewer"

// ArticleHandler handles HTTP requests for articles and the review gate.
type ArticleHandler struct {
	reviewService service.ReviewService
	logger        *logger.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(reviewService service.ReviewService, log *logger.Logger) *ArticleHandler {
	return &ArticleHandler{reviewService: reviewService, logger: log}
}

// RegisterRoutes registers the article routes to the Echo group.
func (h *ArticleHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListArticles)
	g.GET("/:id", h.GetArticle)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/publish", h.Publish)
}

func (h *ArticleHandler) ListArticles(c echo.Context) error {
	articles, err := h.reviewService.ListArticles(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		h.logger.Error("Failed to list articles", logger.ErrorField(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid article ID"})
	}

	article, err := h.reviewService.GetArticle(c.Request().Context(), uint(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Approve(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid article ID"})
	}

	article, err := h.reviewService.Approve(c.Request().Context(), uint(id), c.Request().Header.Get(reviewerHeader))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Reject(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid article ID"})
	}

	var req dto.RejectArticleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	article, err := h.reviewService.Reject(c.Request().Context(), uint(id), c.Request().Header.Get(reviewerHeader), req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) Publish(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid article ID"})
	}

	article, err := h.reviewService.Publish(c.Request().Context(), uint(id), c.Request().Header.Get(reviewerHeader))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}
