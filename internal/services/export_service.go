package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"herdbook/internal/config"
	"herdbook/internal/exporter"
	"herdbook/internal/infrastructure"
)

// ExportInput describes one export request
type ExportInput struct {
	Filename string
	Format   string
	Columns  exporter.Columns
	Records  exporter.Dataset
}

// ExportResult reports what was delivered
type ExportResult struct {
	Written bool
	Format  exporter.Format
	Name    string
	Rows    int
	Bytes   int
}

// ExportService renders datasets and delivers them to sinks
type ExportService struct {
	exporter      *exporter.Exporter
	maxRecords    int
	defaultFormat exporter.Format
	tracer        trace.Tracer
	metrics       *infrastructure.BusinessMetrics
	logger        *slog.Logger
}

// NewExportService creates an export service from the export config section
func NewExportService(cfg config.ExportConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*ExportService, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	format, err := exporter.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		return nil, fmt.Errorf("default format: %w", err)
	}

	return &ExportService{
		exporter:      exporter.New(exporter.Options{BOM: cfg.BOM}, logger),
		maxRecords:    cfg.MaxRecords,
		defaultFormat: format,
		tracer:        otel.Tracer(infrastructure.ServiceName + ".export"),
		metrics:       metrics,
		logger:        logger.With(slog.String("component", "export_service")),
	}, nil
}

// Export renders in and writes it to sink. An empty dataset reports
// Written == false and never touches the sink.
func (s *ExportService) Export(ctx context.Context, in ExportInput, sink exporter.ArtifactSink) (ExportResult, error) {
	format := s.defaultFormat
	if in.Format != "" {
		f, err := exporter.ParseFormat(in.Format)
		if err != nil {
			return ExportResult{}, fmt.Errorf("%w: %q", ErrInvalidFormat, in.Format)
		}
		format = f
	}

	ctx, span := s.tracer.Start(ctx, "export.render",
		trace.WithAttributes(
			attribute.String("export.format", string(format)),
			attribute.String("export.filename", in.Filename),
			attribute.Int("export.records", len(in.Records)),
		))
	defer span.End()

	result := ExportResult{Format: format, Rows: len(in.Records)}

	if s.maxRecords > 0 && len(in.Records) > s.maxRecords {
		err := fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyRecords, len(in.Records), s.maxRecords)
		infrastructure.RecordError(ctx, err)
		return result, err
	}

	counting := &countingSink{next: sink}
	written, err := s.exporter.ExportAs(ctx, format, counting, in.Records, in.Filename, in.Columns)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("filename", in.Filename),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return result, err
	}

	result.Written = written
	result.Name = counting.name
	result.Bytes = counting.bytes
	if !written {
		result.Rows = 0
	}

	s.metrics.RecordExport(ctx, string(format), result.Rows, result.Bytes)
	span.SetAttributes(
		attribute.Bool("export.written", written),
		attribute.Int("export.bytes", result.Bytes),
	)
	return result, nil
}

// countingSink remembers the size of the artifact it forwards
type countingSink struct {
	next  exporter.ArtifactSink
	name  string
	bytes int
}

func (c *countingSink) Write(ctx context.Context, a exporter.Artifact) error {
	if err := c.next.Write(ctx, a); err != nil {
		return err
	}
	c.name = a.Name
	c.bytes = len(a.Body)
	return nil
}
