package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportGenres []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the download CSV",
	Long: `Writes the same CSV the dashboard's download button produces.

Without --genre every genre is exported. Passing --genre restricts the export
to those genres even when download.honor_filter is off.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", `Output file ("-" for stdout, default download.filename)`)
	exportCmd.Flags().StringArrayVar(&exportGenres, "genre", nil, "Genre to include (repeatable)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	opts := a.dashboardOptions()
	if len(exportGenres) > 0 {
		opts.HonorFilter = true
	}
	dash, err := a.dashboard(cmd.Context(), opts)
	if err != nil {
		return err
	}

	selected := exportGenres
	if len(selected) == 0 {
		selected = dash.Labels()
	}
	payload, err := dash.Download(1, selected)
	if err != nil {
		return err
	}
	data, err := payload.Decode()
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	path := exportOutput
	if path == "" {
		path = payload.Filename
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("export written",
		"path", path,
		"records", len(dash.ExportRecords(selected)),
	)
	return nil
}
