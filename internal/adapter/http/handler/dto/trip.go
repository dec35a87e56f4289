package dto

import (
	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
)

// UpdateStudentStatusRequest is the body of PUT .../students/{id}/status.
// Enum membership is checked by the roster service, not here, so an
// unknown value maps to the InvalidArgument sentinel rather than 422.
type UpdateStudentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ReportIncidentRequest is the body of POST /trips/{trip_id}/incidents.
// Latitude and longitude are optional but must arrive together.
type ReportIncidentRequest struct {
	Type        string   `json:"incident_type" validate:"required"`
	Description string   `json:"description" validate:"required,max=2000"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude,required_with=Longitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude,required_with=Latitude"`
}

func (r *ReportIncidentRequest) Location() *models.Location {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}
	return &models.Location{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// TripResponse shapes a trip for JSON output.
func TripResponse(t *models.Trip) map[string]any {
	if t == nil {
		return nil
	}
	out := map[string]any{
		"id":         t.ID,
		"route_id":   t.RouteID,
		"vehicle_id": t.VehicleID,
		"driver_id":  t.DriverID,
		"school_id":  t.SchoolID,
		"status":     t.Status,
		"start_time": t.StartTime,
		"end_time":   t.EndTime,
	}
	if t.EstimatedArrival != nil {
		out["estimated_arrival"] = t.EstimatedArrival
	}
	if t.ActualArrival != nil {
		out["actual_arrival"] = t.ActualArrival
	}
	if t.LastKnownPosition != nil {
		out["last_known_position"] = t.LastKnownPosition
	}
	return out
}

// StudentStatusResponse shapes a roster row for JSON output.
func StudentStatusResponse(ts *models.TripStudent) map[string]any {
	return map[string]any{
		"trip_id":    ts.TripID,
		"student_id": ts.StudentID,
		"status":     ts.Status,
		"updated_at": ts.Timestamp,
	}
}

// ParseStudentStatus converts the raw request value without validating
// membership; the service owns that check.
func ParseStudentStatus(s string) types.StudentStatus {
	return types.StudentStatus(s)
}
