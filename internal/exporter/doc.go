// Package exporter turns ordered tabular records into downloadable artifacts.
//
// The package has three parts:
//
// Record and Dataset: an ordered field list per record. Key order is the
// order the fields were supplied, which for JSON input is the key order of
// the object.
//
// Encoders: a CSV encoder that quotes every header and value and joins rows
// with "\n" without a trailing newline, and an XLSX encoder built on
// excelize that uses the same column resolution and string forms.
//
// ArtifactSink: the delivery capability. HTTPSink answers a request with a
// file download, FileSink writes under a directory and BufferSink keeps
// artifacts in memory.
//
// Example usage:
//
//	exp := exporter.New(exporter.Options{}, logger)
//	written, err := exp.Export(ctx, exporter.NewHTTPSink(w), records, "herd", nil)
//
// An empty dataset is a no-op: nothing reaches the sink and written is false.
package exporter
