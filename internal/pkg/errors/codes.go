package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrNoVehiclesConfigured = New(
		"NO_VEHICLES_CONFIGURED",
		"Fleet configuration contains zero vehicles",
		http.StatusBadRequest,
	)

	ErrNoDeliveryPoints = New(
		"NO_DELIVERY_POINTS",
		"No delivery points available for allocation",
		http.StatusBadRequest,
	)

	ErrFleetTooLarge = New(
		"FLEET_TOO_LARGE",
		"Fleet configuration exceeds allowed vehicle limits",
		http.StatusBadRequest,
	)

	ErrSimulationNotRunning = New(
		"SIMULATION_NOT_RUNNING",
		"No active simulation cycle",
		http.StatusConflict,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
