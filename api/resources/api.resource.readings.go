// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"net/http"
	"time"

	"github.com/gorilla/schema"
	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// queryDecoder maps URL query parameters onto request structs.
var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

type readingsQuery struct {
	From string `schema:"from"`
	To   string `schema:"to"`
}

type intervalQuery struct {
	MacAddress string `schema:"mac_address"`
	From       string `schema:"from"`
	To         string `schema:"to"`
}

// @Summary List raw readings
// @Description Get raw tower-light readings of a date window
// @Tags sensor-data
// @Produce json
// @Param from query string false "Window start date (YYYY-MM-DD)"
// @Param to query string false "Window end date (YYYY-MM-DD)"
// @Success 200 {array} models.Reading
// @Failure 400 {object} errors.APIError
// @Router /sensor-data [get]
func (h *ReadingHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q readingsQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	start, end, err := dateWindow(q.From, q.To)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid date format, want YYYY-MM-DD", err).WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.ListReadings(r.Context(), start, end)
	if err != nil {
		respondServiceError(w, err, requestID, "failed to list readings")
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Get interval series
// @Description Get per-device state intervals as status-named timeline series
// @Tags sensor-data
// @Produce json
// @Param mac_address query string false "Restrict to one device"
// @Param from query string false "Day to chart (YYYY-MM-DD)"
// @Param to query string false "Day to chart (YYYY-MM-DD)"
// @Success 200 {object} models.IntervalSeriesData
// @Failure 400 {object} errors.APIError
// @Router /sensor-data/interval [get]
func (h *ReadingHandlers) IntervalSeries(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q intervalQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	data, err := h.hubservice.IntervalSeries(r.Context(), q.MacAddress, q.From, q.To)
	if err != nil {
		respondServiceError(w, err, requestID, "failed to build interval series")
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}

// dateWindow spans the inclusive day range [from, to]. A missing from
// opens the window at the epoch, a missing to closes it at now.
func dateWindow(from, to string) (time.Time, time.Time, error) {
	start := time.Unix(0, 0)
	end := time.Now()

	if from != "" {
		day, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = day
	}
	if to != "" {
		day, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = day.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return start, end, nil
}
