package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeljk13/ucitap/pkg/config"
	"github.com/joeljk13/ucitap/pkg/source"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Check that a configuration file parses, that the markers and webhook
triggers are well formed, and that any json_field expression compiles.
Prints what the configuration resolves to and flags source files that
do not exist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", path)

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration valid!")
	fmt.Fprintf(w, "  Sources: %s\n", strings.Join(cfg.Sources, ", "))
	fmt.Fprintf(w, "  Markers: %d\n", len(cfg.Markers))
	fmt.Fprintf(w, "  Output format: %s\n", cfg.Output.Format)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Markers:")
	for i, m := range cfg.Markers {
		fmt.Fprintf(w, "  %d. %s (token %q)\n", i+1, m.Name, m.Token)
	}

	if cfg.Input.JSONField != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Input: json_field %s\n", cfg.Input.JSONField)
	}

	if cfg.CloudWatch != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "CloudWatch:")
		fmt.Fprintf(w, "  Group: %s\n", cfg.CloudWatch.Group)
		if cfg.CloudWatch.StreamPrefix != "" {
			fmt.Fprintf(w, "  Stream prefix: %s\n", cfg.CloudWatch.StreamPrefix)
		}
		fmt.Fprintf(w, "  Since: %s\n", cfg.CloudWatch.Since)
	}

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Webhooks:")
		for _, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  - %s (trigger: %s)\n", name, wh.Trigger)
		}
	}

	// List file sources, flagging ones that do not exist yet.
	var patterns []string
	for _, s := range cfg.Sources {
		if s == source.StdinPath || s == config.CloudWatchSourceName {
			continue
		}
		patterns = append(patterns, s)
	}
	if len(patterns) > 0 {
		files, err := source.ExpandGlobs(patterns)
		if err != nil {
			return fmt.Errorf("expanding source patterns: %w", err)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Source files:")
		for _, f := range files {
			if _, err := os.Stat(f); err != nil {
				fmt.Fprintf(w, "  %s (missing)\n", f)
			} else {
				fmt.Fprintf(w, "  %s\n", f)
			}
		}
	}

	return nil
}
