package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Rohianon/equishare-dashboard/pkg/errors"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
)

// ErrorHandler is a Fiber error handler that converts errors to standard response format
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("request_id", GetRequestID(c)).Str("code", appErr.Code).Msg("Request failed")
		}
		return Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return Error(c, fiberErr.Code, httpStatusToErrorCode(fiberErr.Code), fiberErr.Message, nil)
	}

	logger.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("Unhandled error")
	return Error(c, fiber.StatusInternalServerError, apperrors.ErrInternal.Code, apperrors.ErrInternal.Message, nil)
}

func httpStatusToErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUpgradeRequired:
		return "UPGRADE_REQUIRED"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusInternalServerError:
		return "INTERNAL_ERROR"
	case fiber.StatusBadGateway:
		return "BAD_GATEWAY"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
