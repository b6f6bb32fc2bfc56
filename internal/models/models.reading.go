// FilePath: internal/models/models.reading.go
package models

import "time"

// Status is the machine state derived from a single reading.
type Status string

const (
	StatusRun     Status = "Run"
	StatusIdle    Status = "Idle"
	StatusError   Status = "Error"
	StatusUnknown Status = "Unknown"
)

// Reading is one immutable tower-light observation. Readings are
// append-only facts; they are never updated after insert.
type Reading struct {
	ID         string    `json:"id" db:"id"`
	MacAddress string    `json:"mac_address" db:"mac_address"`
	DeviceName string    `json:"device_name" db:"-"`
	Red        bool      `json:"red_information" db:"red_information"`
	Amber      bool      `json:"amber_information" db:"amber_information"`
	Green      bool      `json:"green_information" db:"green_information"`
	Timestamp  time.Time `json:"insert_timestamp" db:"insert_timestamp"`
}

// Status classifies a reading. Precedence is fixed: red beats amber
// beats green, so a reading with red and green both lit is an Error.
func (r *Reading) Status() Status {
	switch {
	case r.Red:
		return StatusError
	case r.Amber:
		return StatusIdle
	case r.Green:
		return StatusRun
	default:
		return StatusUnknown
	}
}
