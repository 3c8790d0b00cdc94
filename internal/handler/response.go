package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"idcardgen/internal/domain"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse is the JSON body of health endpoints.
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, msg, details string) {
	c.JSON(status, ErrorResponse{Error: msg, Details: details})
}

// MapDomainError translates domain errors to HTTP status codes and messages.
func MapDomainError(err error) (status int, msg string) {
	switch {
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "file field is required"
	case errors.Is(err, domain.ErrMalformedUpload):
		return http.StatusBadRequest, "malformed multipart upload"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnknownTemplate):
		return http.StatusBadRequest, "unknown template"
	case errors.Is(err, domain.ErrOriginNotAllowed):
		var originErr *domain.OriginError
		if errors.As(err, &originErr) {
			return http.StatusForbidden, originErr.Error()
		}
		return http.StatusForbidden, "origin not allowed"
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusInternalServerError, "failed to generate image"
	case errors.Is(err, domain.ErrArtifactMissing):
		return http.StatusInternalServerError, "generated artifact not found"
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusInternalServerError, "failed to send generated artifact"
	default:
		return http.StatusInternalServerError, "an internal error occurred"
	}
}

// errorDetails extracts the client-facing details for err, if any.
func errorDetails(err error) string {
	var genErr *domain.GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Details()
	}
	if errors.Is(err, domain.ErrFileTooLarge) || errors.Is(err, domain.ErrUnknownTemplate) {
		// "<sentinel>: <detail>" as produced by the service
		if _, detail, ok := strings.Cut(err.Error(), ": "); ok {
			return detail
		}
	}
	return ""
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, msg := MapDomainError(err)
	if status >= 500 {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Int("status", status).
			Msg("request failed")
	}
	RespondError(c, status, msg, errorDetails(err))
}

// AbortWithError sends the error response for err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}
