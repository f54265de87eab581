// Package model defines the core domain types for the dumpster pickup
// coordination system.
package model

import "time"

// DateLayout is the ISO-8601 calendar date format used everywhere a date
// crosses a process boundary (HTTP query params, JSON bodies, socket tokens).
const DateLayout = "2006-01-02"

// Dumpster fill levels as reported by field sensors.
const (
	FillLevelGreen  = "green"
	FillLevelOrange = "orange"
	FillLevelRed    = "red"
)

// StatusPending is the initial (and, in this system, only) assignment status.
// Lifecycle completion is handled downstream.
const StatusPending = "PENDING"

// Gateway type tags stored on a plant record. They select which protocol
// adapter is used to reach the plant.
const (
	GatewayContSocket = "ContSocket"
	GatewayPlasSB     = "PlasSB"
)

// Plant represents a recycling plant reachable through a remote protocol.
// AvailableCapacity is a locally cached, informational figure; the
// authoritative per-date capacity lives in the plant's own process.
type Plant struct {
	PlantID                 string  `json:"plant_id"`
	Name                    string  `json:"name"`
	Type                    string  `json:"type"`
	GatewayType             string  `json:"gateway_type"`
	Host                    string  `json:"host"`
	Port                    int     `json:"port"`
	AvailableCapacity       float64 `json:"available_capacity"`
	TotalContainersReceived int     `json:"total_containers_received"`
}

// Dumpster represents a waste container location awaiting pickup.
type Dumpster struct {
	DumpsterID       string    `json:"dumpster_id"`
	Location         string    `json:"location"`
	PostalCode       string    `json:"postal_code"`
	Capacity         float64   `json:"capacity"`
	FillLevel        string    `json:"fill_level"`
	ContainersNumber int       `json:"containers_number"`
	CreatedAt        time.Time `json:"created_at"`
}

// Employee is a coordinator user allowed to assign dumpsters.
type Employee struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"-"`
}

// EmployeeData is the session-safe projection of an Employee (no password).
type EmployeeData struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Assignment is the immutable record of one dumpster being committed to one
// plant by one employee for a given date. AssignedContainers is a frozen copy
// of the dumpster's container count at assignment time.
type Assignment struct {
	ID                 string    `json:"id"`
	PlantID            string    `json:"plant_id"`
	DumpsterID         string    `json:"dumpster_id"`
	EmployeeID         string    `json:"employee_id"`
	AssignmentDate     time.Time `json:"assignment_date"`
	CreatedAt          time.Time `json:"created_at"`
	Status             string    `json:"status"`
	AssignedContainers int       `json:"assigned_containers"`
}

// Usage is one row of dumpster usage history, recorded on every status update.
type Usage struct {
	ID              int64     `json:"id"`
	DumpsterID      string    `json:"dumpster_id"`
	Date            time.Time `json:"date"`
	FillLevel       string    `json:"fill_level"`
	ContainersCount int       `json:"containers_count"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// ─── Coordinator API payloads ─────────────────────────────────────────────────

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthToken is the response to a successful login.
type AuthToken struct {
	Token     string `json:"token"`
	Timestamp int64  `json:"timestamp"`
}

// NewDumpsterRequest is the payload for creating a dumpster.
type NewDumpsterRequest struct {
	Location        string  `json:"location"`
	InitialCapacity float64 `json:"initial_capacity"`
}

// UpdateDumpsterRequest is the payload for updating a dumpster's status.
type UpdateDumpsterRequest struct {
	FillLevel        string `json:"fill_level"`
	ContainersNumber int    `json:"containers_number"`
}

// DumpsterStatus is the API view of a dumpster's current state.
type DumpsterStatus struct {
	DumpsterID       string `json:"dumpster_id"`
	Location         string `json:"location"`
	FillLevel        string `json:"fill_level"`
	ContainersNumber int    `json:"containers_number"`
}

// DumpsterUsage is one usage-history row as returned by the API.
type DumpsterUsage struct {
	DumpsterID      string `json:"dumpster_id"`
	Date            string `json:"date"`
	FillLevel       string `json:"fill_level"`
	ContainersCount int    `json:"containers_count"`
}

// PlantCapacity pairs a plant with its available capacity in tons for a date.
type PlantCapacity struct {
	PlantID  string  `json:"plant_id"`
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

// AssignRequest is the payload for assigning dumpsters to a plant.
// Date is an ISO-8601 calendar date; empty means today.
type AssignRequest struct {
	PlantID     string   `json:"plant_id"`
	DumpsterIDs []string `json:"dumpster_ids"`
	Date        string   `json:"date"`
}

// AssignmentResult summarises a completed assignment batch.
type AssignmentResult struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	PlantID      string   `json:"plant_id"`
	DumpsterIDs  []string `json:"dumpster_ids"`
	Date         string   `json:"date"`
	Status       string   `json:"status"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ─── Plant-facing wire types (HTTP/JSON protocol) ─────────────────────────────
//
// Field names here are fixed by the plant-side protocol and intentionally do
// not follow the coordinator API's snake_case convention.

// RemotePlantCapacity is the body returned by a plant's capacity endpoint.
type RemotePlantCapacity struct {
	ID       string  `json:"id"`
	Capacity float64 `json:"capacity"`
}

// PlantNotification is the body posted to a plant's notify endpoint.
// ArrivalDate is an ISO-8601 date or null, meaning "today" plant-side.
type PlantNotification struct {
	PlantID         string   `json:"plantId"`
	DumpsterIDs     []string `json:"dumpsterIds"`
	TotalContainers int      `json:"totalContainers"`
	ArrivalDate     *string  `json:"arrivalDate"`
}
