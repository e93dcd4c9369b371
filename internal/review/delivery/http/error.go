package http

import (
	"errors"
	"net/http"

	"go-stock-newsroom/internal/entity"
	"go-stock-newsroom/internal/review/dto"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// writeError maps the service error taxonomy onto HTTP statuses: validation
// 400, capability 403, not found 404, precondition violation 409, rest 500.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dto.ErrValidation),
		errors.Is(err, dto.ErrReviewerRequired),
		errors.Is(err, entity.ErrRejectionReasonRequired):
		status = http.StatusBadRequest
	case errors.Is(err, dto.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidTransition),
		errors.Is(err, entity.ErrStatusConflict):
		status = http.StatusConflict
	}
	return c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
