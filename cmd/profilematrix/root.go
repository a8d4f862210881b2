package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpattn/profilematrix/internal/config"
	"github.com/rpattn/profilematrix/internal/export"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profilematrix <input_json_file>",
		Short: "Flatten user profiles into a presence matrix workbook",
		Long: `Reads a JSON array of {"id", "profile"} records and writes an xlsx workbook
next to it with one row per (key path, value) pair and one column per user.
Lists and objects are shown as JSON-like text, e.g. ["a", "b"] or {"k": 1}.

Settings are read from an optional profilematrix.yaml next to the input file.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid from here on; failures are not usage errors.
			cmd.SilenceUsage = true
			return run(cmd, args[0])
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

func run(cmd *cobra.Command, inputPath string) error {
	cfg, err := config.Load(filepath.Dir(inputPath))
	if err != nil {
		return err
	}

	service := export.NewService(export.WithConfig(cfg))
	result, err := service.Run(cmd.Context(), inputPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows x %d users)\n", result.OutputPath, result.Stats.BodyRows, result.Records)
	return nil
}
