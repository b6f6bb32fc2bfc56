// FilePath: internal/repository/postgres/postgres.device.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumiguard/andonhub/internal/database"
	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/models"
)

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	repo := &PostgresBaseRepo{db: db}
	return &DeviceRepo{PostgresBaseRepo: *repo}
}

func (r *DeviceRepo) Get(ctx context.Context, macAddress string) (*models.Device, error) {
	device := &models.Device{}
	query := `
		SELECT mac_address, device_name, location, status, created_at, updated_at
		FROM devices
		WHERE mac_address = $1`

	err := r.db.GetDB().GetContext(ctx, device, query, macAddress)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) List(ctx context.Context) ([]*models.Device, error) {
	devices := []*models.Device{}
	query := `
		SELECT mac_address, device_name, location, status, created_at, updated_at
		FROM devices
		ORDER BY device_name ASC`

	err := r.db.GetDB().SelectContext(ctx, &devices, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list devices", err)
	}
	return devices, nil
}

func (r *DeviceRepo) ListActive(ctx context.Context) ([]*models.Device, error) {
	devices := []*models.Device{}
	query := `
		SELECT mac_address, device_name, location, status, created_at, updated_at
		FROM devices
		WHERE status = $1
		ORDER BY device_name ASC`

	err := r.db.GetDB().SelectContext(ctx, &devices, query, models.DeviceActive)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list active devices", err)
	}
	return devices, nil
}

func (r *DeviceRepo) UpdateLastSeen(ctx context.Context, macAddress string, lastSeen time.Time) error {
	query := `UPDATE devices SET updated_at = $2 WHERE mac_address = $1`

	_, err := r.db.GetDB().ExecContext(ctx, query, macAddress, lastSeen)
	if err != nil {
		return errors.NewDatabaseError("failed to update device last seen", err)
	}
	return nil
}
