package types

import "errors"

var (
	// ErrUnauthorized - connection carries no valid credential.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden - authenticated but not entitled to the resource.
	ErrForbidden = errors.New("not allowed for this caller")

	// ErrTripNotFound is returned identically whether the trip does not
	// exist, is not owned by the caller, or is not in the expected state,
	// so that callers cannot probe which trips exist.
	ErrTripNotFound = errors.New("trip not found")

	// ErrStudentNotFound - no (trip, student) roster entry.
	ErrStudentNotFound = errors.New("student not found on trip")

	// ErrInvalidStatus - malformed enum value in the request.
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrInvalidIncidentType - malformed incident type in the request.
	ErrInvalidIncidentType = errors.New("invalid incident type")

	// ErrTripNotActive - operation is only legal while the trip is in progress.
	ErrTripNotActive = errors.New("trip is not in progress")

	ErrVehicleNotFound = errors.New("vehicle not found")
)
