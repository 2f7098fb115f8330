// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package catalog

import "errors"

// Repository sentinels.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrUnknownSector = errors.New("unknown sector")
)

// Service sentinels. The messages are shown to visitors verbatim.
var (
	ErrProjectNotFound = errors.New("Unable to find requested project")  //nolint:staticcheck // user-facing text
	ErrNoProjects      = errors.New("Unable to find requested projects") //nolint:staticcheck // user-facing text
	ErrInvalidProject  = errors.New("invalid project")
	ErrStore           = errors.New("catalog store failure")
)

// Error codes attached by Service.
const (
	CodeProjectNotFound = "CATALOG_PROJECT_NOT_FOUND"
	CodeNoProjects      = "CATALOG_PROJECTS_NOT_FOUND"
	CodeInvalidProject  = "CATALOG_INVALID_PROJECT"
	CodeUnknownSector   = "CATALOG_UNKNOWN_SECTOR"
	CodeStoreError      = "CATALOG_STORE_ERROR"
)
