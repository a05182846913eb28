package serverutils

import (
	"errors"
	"fmt"

	"decidely-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// AppError is an error that knows its HTTP status.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: fiber.StatusForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Code: fiber.StatusConflict, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Message: "internal server error", Err: err}
}

func Unavailable(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusServiceUnavailable, Message: message, Err: err}
}

// ErrorHandler renders any error returned by a handler as a BaseResponse.
// Server errors are logged and their detail is never sent to the client.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var appErr *AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err.Error(),
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// ErrorHandlerMiddleware turns panics into 500 responses handled by ErrorHandler.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = Internal(fmt.Errorf("panic: %v", r))
			}
		}()
		return ctx.Next()
	}
}
