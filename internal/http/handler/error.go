package handler

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/camerontabion/JurisFlo/internal/extract"
	"github.com/camerontabion/JurisFlo/internal/http/middleware"
	"github.com/camerontabion/JurisFlo/internal/llm"
	"github.com/camerontabion/JurisFlo/internal/service"
	"github.com/camerontabion/JurisFlo/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceError maps errors returned by the service layer onto HTTP responses.
// notFound is the message used for a missing primary resource.
func serviceError(c *fiber.Ctx, err error, notFound string) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", notFound)
	case errors.Is(err, service.ErrCompanyNotFound):
		return writeError(c, fiber.StatusNotFound, "COMPANY_NOT_FOUND", "company not found")
	case errors.Is(err, storage.ErrObjectNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "stored file not found")
	case errors.Is(err, service.ErrFieldNotFound):
		return writeError(c, fiber.StatusNotFound, "FIELD_NOT_FOUND", "field not found")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrNameRequired):
		return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
	case errors.Is(err, service.ErrMessageRequired):
		return writeError(c, fiber.StatusBadRequest, "MESSAGE_REQUIRED", "message is required")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrInvalidStatus):
		return writeError(c, fiber.StatusConflict, "INVALID_STATUS", err.Error())
	case errors.Is(err, service.ErrUnsupportedFormat):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", "only DOCX, PDF and plain text files are supported")
	case errors.Is(err, service.ErrFieldNotLocated):
		return writeError(c, fiber.StatusUnprocessableEntity, "FIELD_NOT_LOCATED", "placeholder not found in the document text")
	case errors.Is(err, extract.ErrInvalidDocument):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_DOCUMENT", "document could not be read")
	case errors.Is(err, llm.ErrNotConfigured):
		return writeError(c, fiber.StatusServiceUnavailable, "LLM_UNAVAILABLE", "language model is not configured")
	case errors.Is(err, llm.ErrEmptyResponse), errors.Is(err, llm.ErrMalformedResponse):
		return writeError(c, fiber.StatusBadGateway, "LLM_ERROR", "language model returned an unusable response")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
