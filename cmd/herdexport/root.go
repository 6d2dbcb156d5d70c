package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"herdbook/internal/infrastructure"
	"herdbook/pkg/contracts"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "herdexport",
		Short:         "Export herd records and classify sale dates",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate(contracts.GetFullVersionString() + "\n")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newExportCmd(opts),
		newCountdownCmd(opts),
	)
	return cmd
}

// logger writes to the command's stderr so stdout stays clean for --stdout
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return infrastructure.NewLoggerWithWriter(cmd.ErrOrStderr(), o.logLevel).
		With(slog.String("component", "herdexport"))
}
