// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lumiguard/andonhub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// DeviceRepository defines the interface for device registry reads.
// Device provisioning happens outside this service; the hub only
// consumes the registry.
type DeviceRepository interface {
	Get(ctx context.Context, macAddress string) (*models.Device, error)
	List(ctx context.Context) ([]*models.Device, error)
	ListActive(ctx context.Context) ([]*models.Device, error)
	UpdateLastSeen(ctx context.Context, macAddress string, lastSeen time.Time) error
}

// ReadingRepository defines the interface for the append-only reading
// log. GetWindow must return readings ordered by device, then by
// timestamp ascending with arrival order preserved on ties, so the
// interval builder sees them in insertion order.
type ReadingRepository interface {
	Insert(ctx context.Context, reading *models.Reading) error
	GetWindow(ctx context.Context, start, end time.Time) ([]models.Reading, error)
	GetWindowByDevice(ctx context.Context, macAddress string, start, end time.Time) ([]models.Reading, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
