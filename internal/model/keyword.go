// Package model defines the persisted entities of the rank tracking engine.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Device is the device class a SERP was captured for.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// Valid reports whether d is a known device class.
func (d Device) Valid() bool {
	return d == DeviceDesktop || d == DeviceMobile
}

// DefaultDevices is the device set used when a caller does not specify one.
var DefaultDevices = []Device{DeviceDesktop, DeviceMobile}

// Keyword is a tracked search phrase for a business, optionally scoped to a
// location. Only active keywords are captured during ingestion.
type Keyword struct {
	ID         uuid.UUID  `json:"id"`
	BusinessID uuid.UUID  `json:"business_id"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
	Keyword    string     `json:"keyword"`
	IsActive   bool       `json:"is_active"`
	Tags       []string   `json:"tags,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Location is the named place a geo-scoped keyword is tracked against.
type Location struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
}
