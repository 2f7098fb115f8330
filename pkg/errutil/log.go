// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package errutil holds helpers for logging and asserting oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors it logs the message, code, and context; for other errors
// the error string. extra is appended as slog key/value pairs.
func LogError(logger *slog.Logger, msg string, err error, extra ...any) {
	LogErrorContext(context.Background(), logger, msg, err, extra...)
}

// LogErrorContext is LogError with a context, so trace ids reach the log.
func LogErrorContext(ctx context.Context, logger *slog.Logger, msg string, err error, extra ...any) {
	attrs := make([]any, 0, len(extra)+6)
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if octx := oopsErr.Context(); len(octx) > 0 {
			attrs = append(attrs, "context", octx)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	attrs = append(attrs, extra...)
	logger.ErrorContext(ctx, msg, attrs...)
}
