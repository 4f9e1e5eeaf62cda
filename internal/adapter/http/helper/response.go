package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapp/internal/adapter/http/validation"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	resp := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		resp.Message = message[0]
	}

	c.JSON(statusCode, resp)
}

func SendError(c *gin.Context, statusCode int, code string, errs []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errs,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := validation.FormatValidationErrors(err)
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errs := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errs, details...)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	errs := []response.ValidationError{
		{
			Field:   "auth",
			Message: message,
		},
	}

	SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", errs)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errs := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errs)
}

func SendNotFoundError(c *gin.Context, message string) {
	errs := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errs)
}

// SendDomainError maps the service error taxonomy onto the single error
// envelope every endpoint shares.
func SendDomainError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError

	if errors.As(err, &validationErr) {
		errs := make([]response.ValidationError, 0, len(validationErr.Violations))

		for _, v := range validationErr.Violations {
			errs = append(errs, response.ValidationError{Field: v.Field, Message: v.Message})
		}

		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
		return
	}

	var authErr *domain.AuthenticationError

	if errors.As(err, &authErr) {
		SendUnauthorizedError(c, authErr.Message)
		return
	}

	var notFoundErr *domain.NotFoundError

	if errors.As(err, &notFoundErr) {
		SendNotFoundError(c, notFoundErr.Error())
		return
	}

	var depErr *domain.DependencyError

	if errors.As(err, &depErr) {
		SendError(c, http.StatusBadGateway, "DEPENDENCY_ERROR", []response.ValidationError{
			{Field: depErr.Dependency, Message: "Operation could not be completed"},
		})
		return
	}

	SendInternalError(c, "Internal server error")
}
