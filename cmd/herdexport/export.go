package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"herdbook/internal/config"
	"herdbook/internal/exporter"
	"herdbook/internal/services"
)

type exportOptions struct {
	in      string
	name    string
	columns string
	format  string
	out     string
	stdout  bool
	bom     bool
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a JSON array of records to a CSV or XLSX file",
		Long: `Reads a JSON array of objects and writes it as a table.
Column order follows --columns when given, otherwise the keys of the first record.
An empty array writes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "input JSON file, - for stdin")
	f.StringVar(&opts.name, "name", "", "artifact name without extension")
	f.StringVar(&opts.columns, "columns", "", "column list, e.g. tag:Ear Tag,weight:Weight")
	f.StringVar(&opts.format, "format", "csv", "output format (csv, xlsx)")
	f.StringVar(&opts.out, "out", ".", "output directory")
	f.BoolVar(&opts.stdout, "stdout", false, "write the artifact to stdout instead of a file")
	f.BoolVar(&opts.bom, "bom", false, "prefix CSV output with a UTF-8 byte order mark")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("out", "stdout")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions) error {
	logger := root.logger(cmd)

	cols, err := exporter.ParseColumns(opts.columns)
	if err != nil {
		return err
	}

	ds, err := readDataset(cmd, opts.in)
	if err != nil {
		return err
	}

	svc, err := services.NewExportService(config.ExportConfig{BOM: opts.bom, DefaultFormat: opts.format}, nil, logger)
	if err != nil {
		return err
	}

	var sink exporter.ArtifactSink
	var buffer *exporter.BufferSink
	var files *exporter.FileSink
	if opts.stdout {
		buffer = exporter.NewBufferSink()
		sink = buffer
	} else {
		files = exporter.NewFileSink(opts.out)
		sink = files
	}

	result, err := svc.Export(cmd.Context(), services.ExportInput{
		Filename: opts.name,
		Columns:  cols,
		Records:  ds,
	}, sink)
	if err != nil {
		return err
	}

	if !result.Written {
		fmt.Fprintln(cmd.ErrOrStderr(), "no records, nothing written")
		return nil
	}

	if buffer != nil {
		artifact, _ := buffer.Last()
		_, err := cmd.OutOrStdout().Write(artifact.Body)
		return err
	}

	for _, path := range files.Paths() {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s (%d bytes)\n", result.Rows, path, result.Bytes)
	}
	return nil
}

func readDataset(cmd *cobra.Command, in string) (exporter.Dataset, error) {
	var r io.Reader
	if in == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(in)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	ds, err := exporter.DecodeDataset(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return ds, nil
}
