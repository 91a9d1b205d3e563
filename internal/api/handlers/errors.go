package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/logger"
)

// ErrorResponse is the body of every failed API call. Alerts holds the
// notices raised by the workflow that failed; Fields maps form fields to
// their validation messages.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Alerts  []alerts.Alert    `json:"alerts"`
}

// statusFor maps an error to the HTTP status returned to the caller
func statusFor(err error) int {
	var fields errors.FieldErrors
	if errors.As(err, &fields) {
		return http.StatusUnprocessableEntity
	}

	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case errors.KindNetwork, errors.KindMalformed:
			return http.StatusBadGateway
		case errors.KindAuth:
			return http.StatusUnauthorized
		}
		if apiErr.Code >= http.StatusBadRequest {
			return apiErr.Code
		}
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, errors.ErrActionNotPermitted), errors.Is(err, errors.ErrInFlight), errors.Is(err, errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err together with the alerts collected for the request
func respondError(c *gin.Context, log logger.Interface, list *alerts.List, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed", "path", c.FullPath(), "status", status)
	} else {
		log.WithError(err).Debug("Request rejected", "path", c.FullPath(), "status", status)
	}

	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: errors.Message(err),
		Alerts:  []alerts.Alert{},
	}
	var fields errors.FieldErrors
	if errors.As(err, &fields) {
		resp.Message = "Invalid input"
		resp.Fields = fields
	}
	if list != nil && list.Len() > 0 {
		resp.Alerts = list.Alerts()
	}
	c.AbortWithStatusJSON(status, resp)
}

// badRequest rejects a body that could not be bound
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: err.Error(),
		Alerts:  []alerts.Alert{},
	})
}
