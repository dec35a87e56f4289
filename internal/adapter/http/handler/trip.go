package handler

import (
	"context"
	"net/http"

	"github.com/Zubra14/verista-tracking/internal/adapter/http/handler/dto"
	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type TripService interface {
	Start(ctx context.Context, tripID, driverID uuid.UUID) (*models.Trip, error)
	End(ctx context.Context, tripID, driverID uuid.UUID) (*models.Trip, error)
	Cancel(ctx context.Context, tripID uuid.UUID) error
	CurrentFor(ctx context.Context, driverID uuid.UUID) (*models.Trip, error)
	AssignedStudents(ctx context.Context, tripID, driverID uuid.UUID) ([]models.RosterEntry, error)
}

type RosterService interface {
	SetStatus(ctx context.Context, tripID, studentID uuid.UUID, newStatus types.StudentStatus, driverID uuid.UUID) (*models.TripStudent, error)
}

type Trip struct {
	trips  TripService
	roster RosterService
	l      logger.Logger
}

func NewTrip(trips TripService, roster RosterService, l logger.Logger) *Trip {
	return &Trip{
		trips:  trips,
		roster: roster,
		l:      l,
	}
}

// Start godoc
// @Summary      Start a trip
// @Description  Moves the caller's scheduled trip to in_progress
// @Tags         Trips
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /trips/{trip_id}/start [post]
func (h *Trip) Start(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "trip_start")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid trip uuid format")
		return
	}

	driver := models.UserFromContext(ctx)
	trip, err := h.trips.Start(ctx, tripID, driver.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to start trip", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"trip": dto.TripResponse(trip)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "trip started successfully", "trip_id", tripID)
}

// End godoc
// @Summary      End a trip
// @Description  Completes the caller's in_progress trip and detaches its students
// @Tags         Trips
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /trips/{trip_id}/end [post]
func (h *Trip) End(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "trip_end")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid trip uuid format")
		return
	}

	driver := models.UserFromContext(ctx)
	trip, err := h.trips.End(ctx, tripID, driver.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to end trip", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"trip": dto.TripResponse(trip)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "trip ended successfully", "trip_id", tripID)
}

// Cancel godoc
// @Summary      Cancel a trip
// @Description  Aborts a scheduled trip before departure (scheduling operators only)
// @Tags         Trips
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /trips/{trip_id}/cancel [post]
func (h *Trip) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "trip_cancel")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid trip uuid format")
		return
	}

	if err := h.trips.Cancel(ctx, tripID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to cancel trip", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "trip cancelled"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "trip cancelled successfully", "trip_id", tripID)
}

// Current godoc
// @Summary      Current trip
// @Description  Returns the caller's in_progress trip, or the next scheduled one, or null
// @Tags         Trips
// @Produce      json
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /drivers/me/trips/current [get]
func (h *Trip) Current(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "trip_current")

	driver := models.UserFromContext(ctx)
	trip, err := h.trips.CurrentFor(ctx, driver.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get current trip", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	// No assigned trip is a normal answer, not an error.
	if err := writeJSON(w, http.StatusOK, envelope{"trip": dto.TripResponse(trip)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Roster godoc
// @Summary      Trip roster
// @Description  Lists students assigned to the trip with their boarding status
// @Tags         Trips
// @Produce      json
// @Param        trip_id  query  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /drivers/me/students [get]
func (h *Trip) Roster(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "trip_roster")

	tripID, err := uuid.Parse(r.URL.Query().Get("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid or missing trip_id query parameter")
		return
	}

	driver := models.UserFromContext(ctx)
	roster, err := h.trips.AssignedStudents(ctx, tripID, driver.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list roster", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"students": roster}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// UpdateStudentStatus godoc
// @Summary      Update a student's boarding status
// @Description  Sets the per-trip boarding status for one student
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        trip_id     path  string                          true  "Trip ID"
// @Param        student_id  path  string                          true  "Student ID"
// @Param        request     body  dto.UpdateStudentStatusRequest  true  "New status"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Security     BearerAuth
// @Router       /trips/{trip_id}/students/{student_id}/status [put]
func (h *Trip) UpdateStudentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "student_status_update")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid trip uuid format")
		return
	}

	studentID, err := uuid.Parse(r.PathValue("student_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid student uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid student uuid format")
		return
	}

	var req dto.UpdateStudentStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := dto.Validate(req); errs != nil {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, errs)
		return
	}

	driver := models.UserFromContext(ctx)
	updated, err := h.roster.SetStatus(ctx, tripID, studentID, dto.ParseStudentStatus(req.Status), driver.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update student status", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"student": dto.StudentStatusResponse(updated)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "student status updated", "trip_id", tripID, "student_id", studentID)
}
