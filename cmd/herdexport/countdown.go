package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"herdbook/internal/countdown"
	"herdbook/internal/services"
)

type countdownOptions struct {
	target   string
	now      string
	location string
	asJSON   bool
}

func newCountdownCmd(root *rootOptions) *cobra.Command {
	opts := &countdownOptions{}

	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Classify a sale date relative to today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCountdown(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.target, "target", "", "sale date, YYYY-MM-DD or RFC 3339")
	f.StringVar(&opts.now, "now", "", "reference date instead of the current time")
	f.StringVar(&opts.location, "tz", "Local", "IANA time zone used to read calendar dates")
	f.BoolVar(&opts.asJSON, "json", false, "print the status as JSON")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runCountdown(cmd *cobra.Command, root *rootOptions, opts *countdownOptions) error {
	loc, err := time.LoadLocation(opts.location)
	if err != nil {
		return fmt.Errorf("unknown time zone %q: %w", opts.location, err)
	}

	now := time.Now().In(loc)
	if opts.now != "" {
		now, err = countdown.ParseTarget(opts.now, loc)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = now.In(loc)
	}

	svc := services.NewCountdownService(func() time.Time { return now }, nil, root.logger(cmd))
	status, err := svc.Classify(cmd.Context(), opts.target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintf(out, "%s [%s, %d days]\n", status.Label, status.Bucket, status.DaysRemaining)
	if status.Advisory != "" {
		fmt.Fprintln(out, status.Advisory)
	}
	return nil
}
