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

type IncidentService interface {
	Report(ctx context.Context, tripID, driverID uuid.UUID, incidentType types.IncidentType, description string, location *models.Location) (*models.Incident, error)
	ListForTrip(ctx context.Context, tripID, driverID uuid.UUID) ([]models.Incident, error)
}

type Incident struct {
	service IncidentService
	l       logger.Logger
}

func NewIncident(service IncidentService, l logger.Logger) *Incident {
	return &Incident{
		service: service,
		l:       l,
	}
}

// Report godoc
// @Summary      Report an incident
// @Description  Appends an immutable incident record to the trip
// @Tags         Incidents
// @Accept       json
// @Produce      json
// @Param        trip_id  path  string                     true  "Trip ID"
// @Param        request  body  dto.ReportIncidentRequest  true  "Incident"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /trips/{trip_id}/incidents [post]
func (h *Incident) Report(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "incident_report")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid trip uuid format")
		return
	}

	var req dto.ReportIncidentRequest
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
	incident, err := h.service.Report(ctx, tripID, driver.ID, types.IncidentType(req.Type), req.Description, req.Location())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to report incident", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"incident": incident}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "incident reported", "trip_id", tripID, "incident_type", req.Type)
}

// List godoc
// @Summary      List trip incidents
// @Description  Returns the trip's incidents, newest first
// @Tags         Incidents
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /trips/{trip_id}/incidents [get]
func (h *Incident) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "incident_list")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid trip uuid format")
		errorResponse(w, http.StatusBadRequest, "invalid trip uuid format")
		return
	}

	driver := models.UserFromContext(ctx)
	incidents, err := h.service.ListForTrip(ctx, tripID, driver.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list incidents", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"incidents": incidents}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
