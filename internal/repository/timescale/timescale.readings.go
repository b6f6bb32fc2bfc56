// FilePath: internal/repository/timescale/timescale.readings.go
package timescale

import (
	"context"
	"time"

	"github.com/lumiguard/andonhub/internal/database"
	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type ReadingRepo struct {
	db database.DB
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{db: db}
	err := repo.initializeSchema()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	// Readings are append-only facts; seq preserves arrival order for
	// equal-timestamp tie-breaks in the interval builder.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			id TEXT NOT NULL,
			seq BIGINT GENERATED ALWAYS AS IDENTITY,
			mac_address TEXT NOT NULL,
			red_information BOOLEAN NOT NULL,
			amber_information BOOLEAN NOT NULL,
			green_information BOOLEAN NOT NULL,
			insert_timestamp TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (insert_timestamp, seq)
		)`,
		`SELECT create_hypertable('sensor_readings', 'insert_timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_readings_mac_timestamp
		 ON sensor_readings(mac_address, insert_timestamp ASC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}
	return nil
}

func (r *ReadingRepo) Insert(ctx context.Context, reading *models.Reading) error {
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	query := `
		INSERT INTO sensor_readings (id, mac_address, red_information, amber_information, green_information, insert_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.GetDB().ExecContext(ctx, query,
		reading.ID, reading.MacAddress, reading.Red, reading.Amber, reading.Green, reading.Timestamp)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

// GetWindow fetches every device's readings in [start, end] in a
// single bulk scan, ordered by device then time then arrival, which
// is the order the interval builder expects.
func (r *ReadingRepo) GetWindow(ctx context.Context, start, end time.Time) ([]models.Reading, error) {
	readings := []models.Reading{}
	query := `
		SELECT id, mac_address, red_information, amber_information, green_information, insert_timestamp
		FROM sensor_readings
		WHERE insert_timestamp BETWEEN $1 AND $2
		ORDER BY mac_address ASC, insert_timestamp ASC, seq ASC`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get readings window", err)
	}
	return readings, nil
}

func (r *ReadingRepo) GetWindowByDevice(ctx context.Context, macAddress string, start, end time.Time) ([]models.Reading, error) {
	readings := []models.Reading{}
	query := `
		SELECT id, mac_address, red_information, amber_information, green_information, insert_timestamp
		FROM sensor_readings
		WHERE mac_address = $1 AND insert_timestamp BETWEEN $2 AND $3
		ORDER BY insert_timestamp ASC, seq ASC`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, macAddress, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get device readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM sensor_readings WHERE insert_timestamp < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[TimescaleDB] Deleted %d readings before %v", rows, before)
	return rows, nil
}
