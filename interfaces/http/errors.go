package http

import (
	"errors"
	"net/http"

	"reelshare/domain/model"
	"reelshare/infrastructure/logger"
	"reelshare/usecase"

	"github.com/gin-gonic/gin"
)

const ErrorUnmarshal = "Error while unmarshal"

func statusFor(err error) int {
	var re *model.ResolutionError
	if errors.As(err, &re) {
		return resolutionStatus(re)
	}
	switch {
	case errors.Is(err, usecase.ErrInvalidURL),
		errors.Is(err, usecase.ErrBulkLimit),
		errors.Is(err, usecase.ErrEmptyBatch),
		errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrInvalidEndpoint),
		errors.Is(err, usecase.ErrNotRetryable):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrDuplicate), errors.Is(err, usecase.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, usecase.ErrPushDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func resolutionStatus(re *model.ResolutionError) int {
	switch re.Category {
	case model.FailureInvalidURL:
		return http.StatusBadRequest
	case model.FailureBlocked:
		if re.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusForbidden
	case model.FailureUnavailable:
		if re.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the error envelope; unexpected errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.GetLogger().
			WithField("error", err).
			WithField("path", c.FullPath()).
			WithField("request_id", c.GetString("request_id")).
			Error("Request failed")
		message = "Something went wrong"
	}
	c.JSON(status, gin.H{"error": http.StatusText(status), "message": message})
}

func badRequest(c *gin.Context, err error) {
	logger.GetLogger().WithField("error", err).Warn(ErrorUnmarshal)
	c.JSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest), "message": err.Error()})
}
