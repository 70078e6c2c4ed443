package dock

import "errors"

var (
	// ErrGeometryUnavailable means no geometry strategy produced a usable rect.
	ErrGeometryUnavailable = errors.New("dock geometry unavailable")

	// ErrCollaboratorUnavailable means a window-system or preference query failed.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
