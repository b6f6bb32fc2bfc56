// FilePath: api/resources/api.resource.history.go
package resources

import (
	"net/http"

	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/hubservice"
	"github.com/lumiguard/andonhub/internal/shiftcal"
	nuts "github.com/vaudience/go-nuts"
)

// HistoryHandlers encapsulates the aggregated-history HTTP handlers
type HistoryHandlers struct {
	hubservice *hubservice.HubService
}

type dailyQuery struct {
	Date  string `schema:"date"`
	Shift string `schema:"shift"`
}

type rangeQuery struct {
	Range string `schema:"range"`
}

type customQuery struct {
	Start string `schema:"start"`
	End   string `schema:"end"`
	Shift string `schema:"shift"`
}

// @Summary Daily availability summary
// @Description Get the availability summary of one logical production date
// @Tags history
// @Produce json
// @Param date query string true "Logical production date (YYYY-MM-DD)"
// @Param shift query string false "Shift filter (Morning/Night)"
// @Success 200 {object} models.SummaryData
// @Failure 400 {object} errors.APIError
// @Router /history/daily [get]
func (h *HistoryHandlers) DailySummary(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q dailyQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	shift, err := shiftcal.ParseShift(q.Shift)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid shift, want Morning or Night", err).WithRequestID(requestID))
		return
	}

	data, err := h.hubservice.SummaryForDate(r.Context(), q.Date, shift)
	if err != nil {
		respondServiceError(w, err, requestID, "failed to compute daily summary")
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}

// @Summary Trailing-range availability summary
// @Description Get per-date summaries and a grand total for a trailing window ending today
// @Tags history
// @Produce json
// @Param range query string true "Window literal (3days/7days/1month)"
// @Success 200 {object} models.RangeSummaryData
// @Failure 400 {object} errors.APIError
// @Router /history/range [get]
func (h *HistoryHandlers) RangeSummary(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q rangeQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	data, err := h.hubservice.SummaryForRange(r.Context(), q.Range)
	if err != nil {
		respondServiceError(w, err, requestID, "failed to compute range summary")
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}

// @Summary Custom-range availability summary
// @Description Get per-date summaries and a grand total over an explicit date span
// @Tags history
// @Produce json
// @Param start query string true "First date (YYYY-MM-DD)"
// @Param end query string true "Last date (YYYY-MM-DD)"
// @Param shift query string false "Shift filter (Morning/Night)"
// @Success 200 {object} models.RangeSummaryData
// @Failure 400 {object} errors.APIError
// @Router /history/custom [get]
func (h *HistoryHandlers) CustomRangeSummary(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q customQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	shift, err := shiftcal.ParseShift(q.Shift)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid shift, want Morning or Night", err).WithRequestID(requestID))
		return
	}

	data, err := h.hubservice.SummaryForDateRange(r.Context(), q.Start, q.End, shift)
	if err != nil {
		respondServiceError(w, err, requestID, "failed to compute custom range summary")
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}
