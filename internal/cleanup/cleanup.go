package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/lumiguard/andonhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Service prunes readings that have aged out of the retention window.
type Service struct {
	readings repository.ReadingRepository
	events   *nuts.EventEmitter
}

// New creates a new cleanup Service
func New(readings repository.ReadingRepository) *Service {
	return &Service{
		readings: readings,
		events:   nuts.NewEventEmitter(),
	}
}

// Run deletes all readings older than maxAge and reports how many
// rows were removed. A maxAge of zero disables pruning.
func (s *Service) Run(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-maxAge)
	deleted, err := s.readings.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune readings: %w", err)
	}

	if deleted > 0 {
		nuts.L.Infof("[Cleanup] Pruned %d readings older than %s", deleted, cutoff.Format(time.RFC3339))
		s.events.Emit("readings.pruned", fmt.Sprintf("%d", deleted))
	}
	return deleted, nil
}

// StartPeriodic runs pruning on a fixed interval until ctx is
// cancelled.
func (s *Service) StartPeriodic(ctx context.Context, interval, maxAge time.Duration) {
	if maxAge <= 0 {
		nuts.L.Infof("[Cleanup] Retention disabled, readings are kept forever")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx, maxAge); err != nil {
					nuts.L.Errorf("[Cleanup] Pruning failed: %v", err)
				}
			}
		}
	}()
	nuts.L.Infof("[Cleanup] Pruning every %s, retention %s", interval, maxAge)
}

// OnCleanup registers a callback for cleanup events
func (s *Service) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
