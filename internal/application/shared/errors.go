package shared

import (
	"errors"

	"github.com/avocado/teamhub/internal/domain/shared"
	"go.uber.org/zap"
)

// Internal passes domain errors through. Any other error is logged with its
// full detail and replaced by the generic UNKNOWN error, so driver text never
// reaches a client.
func Internal(log *zap.Logger, msg string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	log.Error(msg, append(fields, zap.Error(err))...)
	return shared.ErrUnknown
}

// NotFound maps shared.ErrNotFound onto a specific message and passes any
// other error through Internal.
func NotFound(log *zap.Logger, err error, message string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrNotFound.WithMessage(message)
	}
	return Internal(log, "Store query failed", err)
}
