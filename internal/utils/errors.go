package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/types"
)

const internalErrorMessage = "Internal server error"

// RespondError aborts the request with the status and message of err's kind.
// Errors without a kind are logged and answered with a generic 500.
func RespondError(ctx *gin.Context, log *applog.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)

	message := internalErrorMessage
	var appErr *apperrors.Error
	if kind != apperrors.KindInternal && errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	if kind == apperrors.KindInternal {
		log.ErrorContext(ctx.Request.Context(), "Request failed",
			applog.FieldRequestID, ctx.GetString(types.ContextRequestIDKey),
			applog.FieldMethod, ctx.Request.Method,
			applog.FieldPath, ctx.FullPath(),
			applog.FieldError, err)
	}

	ctx.AbortWithStatusJSON(status, gin.H{"error": message, "kind": kind})
}

// RespondValidation answers 400 for a request that could not be bound.
func RespondValidation(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(apperrors.HTTPStatus(apperrors.KindValidation), gin.H{
		"error": message,
		"kind":  apperrors.KindValidation,
	})
}
