package model

import "time"

// Provisioning run outcomes.
const (
	RunStatusSucceeded  = "succeeded"
	RunStatusFailed     = "failed"
	RunStatusNoMetadata = "no-metadata"
)

// ProvisionRun records one provisioning pass over the host.
type ProvisionRun struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	LinksTotal      int       `json:"links_total"`
	LinksConfigured int       `json:"links_configured"`
	RebootRequired  bool      `json:"reboot_required"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}
