package models

import "time"

// Standard API Response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *MetaData   `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Field   string      `json:"field,omitempty"`
}

type MetaData struct {
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
}

// Health Check Response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// DispatchOutcome is returned by the orchestrator for assignment attempts.
// Degraded means no private resource was matched and the public hotline was
// notified instead; it is a successful outcome, not an error.
type DispatchOutcome struct {
	Assigned       bool           `json:"assigned"`
	Degraded       bool           `json:"degraded"`
	Message        string         `json:"message"`
	Ambulance      *Ambulance     `json:"ambulance,omitempty"`
	Hospital       *Hospital      `json:"hospital,omitempty"`
	ETA            *RouteEstimate `json:"eta,omitempty"`
	CandidatesSeen int            `json:"candidatesSeen"`
}

// RouteEstimate is the routing collaborator's answer, or the haversine
// fallback when routing is unavailable.
type RouteEstimate struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
	Estimated       bool    `json:"estimated"`
}

// Address is the geocoding collaborator's answer.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}
