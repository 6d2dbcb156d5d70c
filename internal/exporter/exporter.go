package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnknownFormat is returned for an unsupported export format
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects the artifact encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user supplied format name; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the filename suffix including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType returns the content type of the format
func (f Format) MIMEType() string {
	if f == FormatXLSX {
		return XLSXMIMEType
	}
	return CSVMIMEType
}

// Options configures an Exporter
type Options struct {
	// BOM prefixes CSV output with a UTF-8 byte order mark
	BOM bool
}

// Exporter serializes datasets and hands them to a sink
type Exporter struct {
	opts   Options
	logger *slog.Logger
}

// New creates an exporter
func New(opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		opts:   opts,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Render builds the artifact for ds without delivering it.
// ok is false for an empty dataset.
func (e *Exporter) Render(format Format, ds Dataset, filename string, cols Columns) (Artifact, bool, error) {
	if len(ds) == 0 {
		return Artifact{}, false, nil
	}

	var body []byte
	switch format {
	case FormatCSV:
		body = MarshalCSV(ds, cols)
		if e.opts.BOM {
			body = append(append([]byte{}, utf8BOM...), body...)
		}
	case FormatXLSX:
		var err error
		body, err = MarshalXLSX(ds, cols)
		if err != nil {
			return Artifact{}, false, err
		}
	default:
		return Artifact{}, false, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return Artifact{
		Name:     filename + format.Extension(),
		MIMEType: format.MIMEType(),
		Body:     body,
	}, true, nil
}

// Export writes ds as CSV to sink under filename + ".csv".
// An empty dataset does nothing and reports written == false.
func (e *Exporter) Export(ctx context.Context, sink ArtifactSink, ds Dataset, filename string, cols Columns) (bool, error) {
	return e.ExportAs(ctx, FormatCSV, sink, ds, filename, cols)
}

// ExportXLSX writes ds as a workbook to sink under filename + ".xlsx"
func (e *Exporter) ExportXLSX(ctx context.Context, sink ArtifactSink, ds Dataset, filename string, cols Columns) (bool, error) {
	return e.ExportAs(ctx, FormatXLSX, sink, ds, filename, cols)
}

// ExportAs writes ds in the given format to sink
func (e *Exporter) ExportAs(ctx context.Context, format Format, sink ArtifactSink, ds Dataset, filename string, cols Columns) (bool, error) {
	artifact, ok, err := e.Render(format, ds, filename, cols)
	if err != nil {
		return false, err
	}
	if !ok {
		e.logger.DebugContext(ctx, "empty dataset, nothing exported", slog.String("filename", filename))
		return false, nil
	}

	if err := sink.Write(ctx, artifact); err != nil {
		return false, fmt.Errorf("failed to deliver %s: %w", artifact.Name, err)
	}

	e.logger.InfoContext(ctx, "export delivered",
		slog.String("name", artifact.Name),
		slog.String("format", string(format)),
		slog.Int("records", len(ds)),
		slog.Int("bytes", len(artifact.Body)))
	return true, nil
}
