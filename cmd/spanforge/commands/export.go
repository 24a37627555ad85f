package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/internal/report"
	"github.com/assafkip/spanforge/pkg/storage"
)

var (
	exportRun    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run summaries (CSV, JSON)",
	Long: `Flatten every completed run under a run directory into a summary file.

Default output directory: --out`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := exportRun
		if root == "" {
			root = outDir
		}
		store := storage.NewLocalStore(root)
		runs, err := report.LoadRuns(cmd.Context(), store)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no completed runs under %s", root)
		}

		items := report.BuildItems(runs)
		path := filepath.Join(outDir, "runs_export."+exportFormat)
		switch exportFormat {
		case "csv":
			err = report.GenerateCSV(items, path)
		case "json":
			err = report.GenerateJSON(items, path)
		default:
			return fmt.Errorf("unsupported format %q (want csv or json)", exportFormat)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%d runs -> %s\n", len(items), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportRun, "run", "", "Run directory to export (defaults to --out)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, json)")
}
