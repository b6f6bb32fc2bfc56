// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/lumiguard/andonhub/api"
	"github.com/lumiguard/andonhub/internal/cache"
	"github.com/lumiguard/andonhub/internal/config"
	"github.com/lumiguard/andonhub/internal/database"
	"github.com/lumiguard/andonhub/internal/hubservice"
	"github.com/lumiguard/andonhub/internal/ingest"
	"github.com/lumiguard/andonhub/internal/liveness"
	"github.com/lumiguard/andonhub/internal/monitoring"
	"github.com/lumiguard/andonhub/internal/repository/postgres"
	"github.com/lumiguard/andonhub/internal/repository/timescale"
	"github.com/lumiguard/andonhub/internal/shiftcal"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server and the background consumers it
// owns.
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	tracker    *liveness.Tracker
	consumer   *ingest.Consumer
	redis      *redis.Client
	appDB      database.DB
	tsdb       database.DB
	cancel     context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start wires all components and begins listening for requests. It
// blocks until an interrupt signal arrives.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.initializeHubService(ctx)
	s.monitoring = monitoring.NewService(monitoring.Config{
		LogLevel: s.config.Monitoring.LogLevel,
	})

	s.setupCleanupHandlers()
	s.hubservice.Cleanup.StartPeriodic(ctx, s.config.Retention.Interval, s.config.Retention.MaxAge)

	go s.watchLiveness(ctx)

	router := api.NewRouter(s.hubservice, s.tracker)
	router.SetHealthCheck(s.handleHealth())

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.config.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      cors(router),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")
	s.cancel()
	s.consumer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if err := s.redis.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing redis client: %v", err)
	}
	if err := s.tsdb.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing TimescaleDB: %v", err)
	}
	if err := s.appDB.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing AppDB: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// initializeHubService connects the databases, the cache and the MQTT
// consumer, and assembles the hub service.
func (s *Server) initializeHubService(ctx context.Context) {
	s.tsdb = initTimescaleDB(s.config.Database.TimescaleDB)
	s.appDB = initAppDB(s.config.Database.AppDB)

	devices := postgres.NewDeviceRepository(s.appDB)
	readings, err := timescale.NewReadingRepository(s.tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}

	s.redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", s.config.Redis.Host, s.config.Redis.Port),
		Password: s.config.Redis.Password,
		DB:       s.config.Redis.DB,
	})
	if err := s.redis.Ping(ctx).Err(); err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to redis: %v", err)
	}

	deviceCache := cache.New(s.redis, devices, s.config.Redis.CacheTTL)
	// The registry may have changed while the hub was down.
	if err := deviceCache.Clear(ctx); err != nil {
		nuts.L.Warnf("[Server] Failed to clear device cache: %v", err)
	}

	s.tracker = liveness.New(s.config.Liveness.DeviceTimeout, nil)

	calendar := shiftcal.New(shiftcal.Config{
		DayStartHour:    s.config.Shift.DayStartHour,
		MorningEndHour:  s.config.Shift.MorningEndHour,
		BaseHours:       s.config.Shift.BaseHours,
		OvertimeHours:   s.config.Shift.OvertimeHours,
		FridayOTHours:   s.config.Shift.FridayOvertimeHours,
		MorningOTHour:   s.config.Shift.MorningOvertimeHour,
		NightOTFromHour: s.config.Shift.NightOvertimeFrom,
		NightOTToHour:   s.config.Shift.NightOvertimeTo,
	})

	s.hubservice = hubservice.New(devices, readings, calendar)
	if err := s.hubservice.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid hub service: %v", err)
	}

	s.consumer = ingest.New(s.config.MQTT, readings, deviceCache, s.tracker, nil)
	if err := s.consumer.Start(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to start MQTT consumer: %v", err)
	}
}

// watchLiveness polls the tracker and records liveness transitions of
// active devices. Last-seen instants of online devices are flushed to
// the registry so the provisioning tool can show them.
func (s *Server) watchLiveness(ctx context.Context) {
	ticker := time.NewTicker(s.config.Liveness.HeartbeatInterval)
	defer ticker.Stop()

	wasOnline := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		devices, err := s.hubservice.ListActiveDevices(tickCtx)
		if err != nil {
			nuts.L.Warnf("[Server] Liveness check failed to list devices: %v", err)
			cancel()
			continue
		}

		for _, device := range devices {
			online := s.tracker.IsOnline(device.MacAddress)
			if online == wasOnline[device.MacAddress] {
				continue
			}
			wasOnline[device.MacAddress] = online

			if online {
				nuts.L.Infof("[Server] Device %s (%s) is online", device.DeviceName, device.MacAddress)
				s.monitoring.RecordEvent("device_online", map[string]string{
					"mac_address": device.MacAddress,
				})
				if seen, ok := s.tracker.LastSeen(device.MacAddress); ok {
					if err := s.hubservice.Devices.UpdateLastSeen(tickCtx, device.MacAddress, seen); err != nil {
						nuts.L.Warnf("[Server] Failed to update last seen for %s: %v", device.MacAddress, err)
					}
				}
			} else {
				nuts.L.Warnf("[Server] Device %s (%s) went offline", device.DeviceName, device.MacAddress)
				s.monitoring.RecordEvent("device_offline", map[string]string{
					"mac_address": device.MacAddress,
				})
			}
		}
		cancel()
	}
}

// handleHealth reports the service version and the state of both
// database connections.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok","version":"` + nuts.GetVersion() + `"}`
		if err := s.tsdb.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"degraded","detail":"reading store unreachable"}`
		} else if err := s.appDB.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"degraded","detail":"device registry unreachable"}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (s *Server) setupCleanupHandlers() {
	s.hubservice.Cleanup.OnCleanup("readings.pruned", func(deleted string) {
		s.monitoring.RecordEvent("readings_pruned", map[string]string{
			"deleted": deleted,
		})
	})
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return wrappedDB
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return wrappedDB
}
