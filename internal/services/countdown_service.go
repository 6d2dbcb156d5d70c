package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"herdbook/internal/countdown"
	"herdbook/internal/infrastructure"
	"herdbook/pkg/contracts"
)

// CountdownService classifies sale targets relative to its clock
type CountdownService struct {
	clock   countdown.Clock
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewCountdownService creates a countdown service. A nil clock uses the system clock.
func NewCountdownService(clock countdown.Clock, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *CountdownService {
	if clock == nil {
		clock = countdown.SystemClock
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &CountdownService{
		clock:   clock,
		tracer:  otel.Tracer(infrastructure.ServiceName + ".countdown"),
		metrics: metrics,
		logger:  logger.With(slog.String("component", "countdown_service")),
	}
}

// Now returns the service clock reading
func (s *CountdownService) Now() time.Time {
	return s.clock()
}

// Classify parses target as a sale date in the clock's location and classifies it
func (s *CountdownService) Classify(ctx context.Context, target string) (countdown.Status, error) {
	return s.ClassifyAt(ctx, target, s.clock())
}

// ClassifyAt classifies target against an explicit now
func (s *CountdownService) ClassifyAt(ctx context.Context, target string, now time.Time) (countdown.Status, error) {
	t, err := countdown.ParseTarget(target, now.Location())
	if err != nil {
		return countdown.Status{}, err
	}

	status := countdown.Classify(t, now)
	s.metrics.RecordClassification(ctx, string(status.Bucket))
	return status, nil
}

// Batch classifies every item against one clock reading. It fails on the
// first unparsable target so callers never see a partial result.
func (s *CountdownService) Batch(ctx context.Context, items []contracts.CountdownItem) (contracts.CountdownBatchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "countdown.batch",
		trace.WithAttributes(attribute.Int("countdown.items", len(items))))
	defer span.End()

	now := s.clock()
	results := make([]contracts.CountdownResult, 0, len(items))
	for _, item := range items {
		status, err := s.ClassifyAt(ctx, item.Target, now)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return contracts.CountdownBatchResponse{}, fmt.Errorf("item %s: %w", item.ID, err)
		}
		results = append(results, contracts.CountdownResult{ID: item.ID, Status: status})
	}

	s.logger.DebugContext(ctx, "batch classified", slog.Int("items", len(results)))
	return contracts.CountdownBatchResponse{
		Now:     now.Format(time.RFC3339),
		Results: results,
	}, nil
}
