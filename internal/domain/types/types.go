package types

// Enum for trip lifecycle status
type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

func (s TripStatus) String() string {
	return string(s)
}

// Enum for per-trip student boarding status
type StudentStatus string

const (
	StudentWaiting    StudentStatus = "waiting"
	StudentPickedUp   StudentStatus = "picked_up"
	StudentDroppedOff StudentStatus = "dropped_off"
	StudentAbsent     StudentStatus = "absent"
)

func (s StudentStatus) String() string {
	return string(s)
}

// IsValidStudentStatus reports whether s is one of the four recognized
// boarding states. Every transition site checks this before writing.
func IsValidStudentStatus(s StudentStatus) bool {
	switch s {
	case StudentWaiting, StudentPickedUp, StudentDroppedOff, StudentAbsent:
		return true
	default:
		return false
	}
}

// Enum for incident type
type IncidentType string

const (
	IncidentDelay     IncidentType = "delay"
	IncidentBreakdown IncidentType = "breakdown"
	IncidentAccident  IncidentType = "accident"
	IncidentOther     IncidentType = "other"
)

func (t IncidentType) String() string {
	return string(t)
}

func IsValidIncidentType(t IncidentType) bool {
	switch t {
	case IncidentDelay, IncidentBreakdown, IncidentAccident, IncidentOther:
		return true
	default:
		return false
	}
}

// Enum for connection/user role
type UserRole string

const (
	RoleDriver     UserRole = "driver"
	RoleParent     UserRole = "parent"
	RoleSchool     UserRole = "school"
	RoleGovernment UserRole = "government"
	RoleAdmin      UserRole = "admin"
)

func (r UserRole) String() string {
	return string(r)
}

func IsValidRole(r UserRole) bool {
	switch r {
	case RoleDriver, RoleParent, RoleSchool, RoleGovernment, RoleAdmin:
		return true
	default:
		return false
	}
}
