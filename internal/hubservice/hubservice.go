package hubservice

import (
	"context"
	"time"

	"github.com/lumiguard/andonhub/internal/cleanup"
	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/repository"
	"github.com/lumiguard/andonhub/internal/shiftcal"
)

// rangeWorkers bounds the per-date parallelism of multi-day
// summaries. Dates are independent because no interval crosses a
// logical-day boundary.
const rangeWorkers = 4

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Devices  repository.DeviceRepository
	Readings repository.ReadingRepository
	Calendar shiftcal.Calendar
	Cleanup  *cleanup.Service

	now func() time.Time
}

// New creates a new HubService instance
func New(devices repository.DeviceRepository, readings repository.ReadingRepository, calendar shiftcal.Calendar) *HubService {
	svc := &HubService{
		Devices:  devices,
		Readings: readings,
		Calendar: calendar,
		now:      time.Now,
	}
	svc.Cleanup = cleanup.New(readings)
	return svc
}

// WithClock overrides the service clock. Test hook.
func (s *HubService) WithClock(now func() time.Time) *HubService {
	s.now = now
	return s
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// ListDevices returns all registered devices.
func (s *HubService) ListDevices(ctx context.Context) ([]*models.Device, error) {
	return s.Devices.List(ctx)
}

// ListActiveDevices returns the devices participating in
// aggregations.
func (s *HubService) ListActiveDevices(ctx context.Context) ([]*models.Device, error) {
	return s.Devices.ListActive(ctx)
}

// ListReadings returns the raw readings of a window, decorated with
// device names.
func (s *HubService) ListReadings(ctx context.Context, start, end time.Time) ([]models.Reading, error) {
	readings, err := s.Readings.GetWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}
	names, _, err := s.deviceIndex(ctx)
	if err != nil {
		return nil, err
	}
	decorate(readings, names)
	return readings, nil
}

// deviceIndex loads the registry once per query: a name lookup and
// the set of active macs.
func (s *HubService) deviceIndex(ctx context.Context) (map[string]string, map[string]bool, error) {
	devices, err := s.Devices.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(devices))
	active := make(map[string]bool, len(devices))
	for _, d := range devices {
		names[d.MacAddress] = d.DeviceName
		if d.IsActive() {
			active[d.MacAddress] = true
		}
	}
	return names, active, nil
}

func decorate(readings []models.Reading, names map[string]string) {
	for i := range readings {
		if name, ok := names[readings[i].MacAddress]; ok {
			readings[i].DeviceName = name
		}
	}
}
