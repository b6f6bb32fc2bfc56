// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/lumiguard/andonhub/internal/hubservice"
	"github.com/lumiguard/andonhub/internal/liveness"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	Readings    *ReadingHandlers
	History     *HistoryHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService, tracker *liveness.Tracker) *Resources {
	return &Resources{
		Devices:  &DeviceHandlers{hubservice: svc, tracker: tracker},
		Readings: &ReadingHandlers{hubservice: svc},
		History:  &HistoryHandlers{hubservice: svc},
		HealthCheck: func(w http.ResponseWriter, r *http.Request) {
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}
