// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/hubservice"
	"github.com/lumiguard/andonhub/internal/liveness"
	"github.com/lumiguard/andonhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the device-related HTTP handlers
type DeviceHandlers struct {
	hubservice *hubservice.HubService
	tracker    *liveness.Tracker
}

// deviceView is a registry row enriched with the liveness state.
type deviceView struct {
	*models.Device
	Online   bool   `json:"online"`
	LastSeen string `json:"last_seen,omitempty"`
}

// @Summary List devices
// @Description Get all registered devices with their liveness state
// @Tags devices
// @Produce json
// @Success 200 {array} deviceView
// @Failure 500 {object} errors.APIError
// @Router /devices [get]
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	devices, err := h.hubservice.ListDevices(r.Context())
	if err != nil {
		respondServiceError(w, err, requestID, "failed to list devices")
		return
	}

	respondWithJSON(w, http.StatusOK, h.withLiveness(devices))
}

// @Summary List active devices
// @Description Get the devices that participate in aggregations
// @Tags devices
// @Produce json
// @Success 200 {array} deviceView
// @Failure 500 {object} errors.APIError
// @Router /devices/active [get]
func (h *DeviceHandlers) ListActiveDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	devices, err := h.hubservice.ListActiveDevices(r.Context())
	if err != nil {
		respondServiceError(w, err, requestID, "failed to list active devices")
		return
	}

	respondWithJSON(w, http.StatusOK, h.withLiveness(devices))
}

func (h *DeviceHandlers) withLiveness(devices []*models.Device) []deviceView {
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		view := deviceView{Device: d}
		if h.tracker != nil {
			view.Online = h.tracker.IsOnline(d.MacAddress)
			if seen, ok := h.tracker.LastSeen(d.MacAddress); ok {
				view.LastSeen = seen.Format(time.RFC3339)
			}
		}
		views = append(views, view)
	}
	return views
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError passes structured service errors through with
// their own status code and wraps everything else as internal.
func respondServiceError(w http.ResponseWriter, err error, requestID, fallback string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError(fallback, err).WithRequestID(requestID))
}
