// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/solhub/solhub/internal/auth"
	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/internal/observability"
)

// msgPasswordRequired is shown when the registration form has no password.
const msgPasswordRequired = "Password is required"

// registerOutcome maps a Register error to the text shown on the form and
// the response status.
func registerOutcome(err error) (string, int) {
	switch {
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "Passwords do not match", http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidIdentifier):
		return "User Name is required and may be at most 64 characters", http.StatusBadRequest
	case errors.Is(err, auth.ErrIdentifierTaken):
		return "User Name already taken", http.StatusConflict
	case errors.Is(err, auth.ErrHashingFailed):
		return "There was an error encrypting the password", http.StatusInternalServerError
	default:
		return "There was an error creating the user", http.StatusInternalServerError
	}
}

// loginOutcome maps an Authenticate error to the form text, the response
// status, and the metrics result label.
func loginOutcome(err error, userName string) (string, int, string) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return "Unable to find user: " + userName, http.StatusUnauthorized, observability.ResultFailure
	case errors.Is(err, auth.ErrIncorrectPassword):
		return "Incorrect Password for user: " + userName, http.StatusUnauthorized, observability.ResultFailure
	default:
		return "There was an error verifying the user", http.StatusInternalServerError, observability.ResultError
	}
}

func registerResult(status int) string {
	if status >= http.StatusInternalServerError {
		return observability.ResultError
	}
	return observability.ResultFailure
}

// catalogMessage returns visitor-safe text for a catalog error.
func catalogMessage(err error) string {
	for _, sentinel := range []error{
		catalog.ErrProjectNotFound,
		catalog.ErrNoProjects,
		catalog.ErrUnknownSector,
		catalog.ErrStore,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if errors.Is(err, catalog.ErrInvalidProject) {
		return err.Error()
	}
	return "internal error"
}

// isFormError reports whether err should re-render the project form
// rather than the error page.
func isFormError(err error) bool {
	return errors.Is(err, catalog.ErrInvalidProject) ||
		errors.Is(err, catalog.ErrUnknownSector)
}
