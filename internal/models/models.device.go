// FilePath: internal/models/models.device.go
package models

import "time"

// DeviceStatus is the registration state of an andon device.
type DeviceStatus string

const (
	DeviceActive   DeviceStatus = "Active"
	DeviceInactive DeviceStatus = "Inactive"
)

// Device is a registered andon tower light.
type Device struct {
	MacAddress string       `json:"mac_address" db:"mac_address"`
	DeviceName string       `json:"device_name" db:"device_name"`
	Location   string       `json:"location" db:"location"`
	Status     DeviceStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the device participates in aggregations.
func (d *Device) IsActive() bool {
	return d.Status == DeviceActive
}
