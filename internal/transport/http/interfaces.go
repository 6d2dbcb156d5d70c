package http

import (
	"context"

	"herdbook/internal/countdown"
	"herdbook/internal/exporter"
	"herdbook/internal/services"
	"herdbook/pkg/contracts"
)

// ExportService is the export behaviour the handlers depend on
type ExportService interface {
	Export(ctx context.Context, in services.ExportInput, sink exporter.ArtifactSink) (services.ExportResult, error)
}

// CountdownService is the classification behaviour the handlers depend on
type CountdownService interface {
	Classify(ctx context.Context, target string) (countdown.Status, error)
	Batch(ctx context.Context, items []contracts.CountdownItem) (contracts.CountdownBatchResponse, error)
}
