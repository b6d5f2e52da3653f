// Package api - API types for mortality tables
// These types define the contract for the /v1 endpoints.
package api

import (
	"encoding/json"
	"time"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Time        string `json:"time"`
}

// VersionResponse is returned by GET /version
type VersionResponse struct {
	Version        string `json:"version"`
	Engine         string `json:"engine"`
	APIVersion     string `json:"api_version"`
	BaseYear       int    `json:"base_year,omitempty"`
	PublishedYears []int  `json:"published_years,omitempty"`
	FinalPrecision int32  `json:"final_precision,omitempty"`
}

// RateResponse is returned by GET /v1/rates/:year/:category/:age
type RateResponse struct {
	CalcYear    int         `json:"calc_year"`
	Category    string      `json:"category"`
	Age         int         `json:"age"`
	Rate        json.Number `json:"rate"`
	Source      string      `json:"source"`
	Fingerprint string      `json:"fingerprint"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail names the error type and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
