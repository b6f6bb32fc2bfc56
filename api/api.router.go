package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lumiguard/andonhub/api/resources"
	"github.com/lumiguard/andonhub/internal/hubservice"
	"github.com/lumiguard/andonhub/internal/liveness"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, tracker *liveness.Tracker) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc, tracker),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Devices
	devices := api.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("/active", r.resources.Devices.ListActiveDevices).Methods(http.MethodGet)

	// Raw readings and interval series
	sensorData := api.PathPrefix("/sensor-data").Subrouter()
	sensorData.HandleFunc("", r.resources.Readings.ListReadings).Methods(http.MethodGet)
	sensorData.HandleFunc("/interval", r.resources.Readings.IntervalSeries).Methods(http.MethodGet)

	// Aggregated history
	history := api.PathPrefix("/history").Subrouter()
	history.HandleFunc("/daily", r.resources.History.DailySummary).Methods(http.MethodGet)
	history.HandleFunc("/range", r.resources.History.RangeSummary).Methods(http.MethodGet)
	history.HandleFunc("/custom", r.resources.History.CustomRangeSummary).Methods(http.MethodGet)
}

// SetHealthCheck sets the health check handler
func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, req *http.Request)) {
	r.resources.SetHealthCheck(h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
