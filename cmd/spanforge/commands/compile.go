package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/internal/report"
	spanconfig "github.com/assafkip/spanforge/pkg/config"
	"github.com/assafkip/spanforge/pkg/engine"
)

var (
	compileInput   string
	compileTargets []string
	compileModel   string
	compileStrict  bool
	compilePublish string
)

var compileCmd = &cobra.Command{
	Use:   "compile [ir.json ...]",
	Short: "Compile IR documents into rule artifacts",
	Long: `Run the full pipeline over one or more IR documents: schema validation,
amount normalization, artifact compilation and the release gates, with every
stage recorded in the audit log.

Example:
  spanforge compile --input ir.json --targets regex,sql,json
  spanforge compile a.json b.json --strict --publish s3://rules-bucket/prod`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if compileInput != "" {
			paths = append([]string{compileInput}, args...)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no input documents: pass --input or positional paths")
		}

		ctx := cmd.Context()
		store, err := buildStore(ctx, compilePublish)
		if err != nil {
			return err
		}

		eng, err := engine.New(ctx,
			engine.WithConfig(engine.Config{
				Pipeline: spanconfig.EngineConfig{
					ModelName:  compileModel,
					Targets:    compileTargets,
					StrictMode: compileStrict,
				},
				AuditPath: auditLog,
				Logger:    newLogger(),
			}),
			engine.WithStore(store),
		)
		if err != nil {
			return err
		}
		defer eng.Close(ctx)

		results, runErr := eng.RunAll(ctx, paths)
		for _, res := range results {
			if res == nil {
				continue
			}
			sum := report.Summarize(res.RunID, res.Doc, res.Report, res.Keys)
			if headless {
				printPlainRun(sum)
			} else {
				fmt.Println(report.RenderRun(sum))
			}
		}
		if runErr != nil {
			if errors.Is(runErr, engine.ErrValidationFailed) {
				return fmt.Errorf("strict mode: %w", runErr)
			}
			return runErr
		}
		return nil
	},
}

func printPlainRun(sum report.RunSummary) {
	status := "PASSED"
	if !sum.AllPassed {
		status = "FAILED: " + strings.Join(sum.FailedGates(), ",")
	}
	fmt.Printf("%s gates=%d/%d indicators=%d targets=%s %s\n",
		sum.RunID, sum.PassedGates, sum.TotalGates, sum.Indicators,
		strings.Join(sum.Targets, ","), status)
	for _, key := range sum.Keys {
		fmt.Printf("  wrote %s\n", key)
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVar(&compileInput, "input", "", "IR document to compile")
	compileCmd.Flags().StringSliceVar(&compileTargets, "targets", nil, "Artifact targets (regex,sql,json,python)")
	compileCmd.Flags().StringVar(&compileModel, "model", "", "Extraction model name recorded with the run")
	compileCmd.Flags().BoolVar(&compileStrict, "strict", false, "Fail the command when any release gate fails")
	compileCmd.Flags().StringVar(&compilePublish, "publish", "", "Publish artifacts to s3://bucket[/prefix] instead of --out")
}
