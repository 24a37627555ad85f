package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/internal/report"
	"github.com/assafkip/spanforge/pkg/audit"
	"github.com/assafkip/spanforge/pkg/compiler"
	"github.com/assafkip/spanforge/pkg/engine"
	"github.com/assafkip/spanforge/pkg/gates"
	"github.com/assafkip/spanforge/pkg/ir"
)

var (
	validateInput   string
	validateRules   string
	validateModel   string
	validateTargets []string
	validateStrict  bool
	validateReport  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the release gates over an IR document",
	Long: `Certify an IR document against the five release gates without persisting
artifacts. Rules are compiled in memory unless --rules points at a directory
of previously compiled artifacts.

The report is written as JSON; gate failures only fail the command under
--strict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateInput == "" {
			return fmt.Errorf("--input is required")
		}
		logger := newLogger()

		doc, err := ir.LoadFile(validateInput)
		if err != nil {
			return err
		}
		ir.MapExtractions(doc)
		ir.NormalizeAmounts(doc)
		if err := ir.ValidateSchema(doc); err != nil {
			return err
		}

		var artifacts compiler.ArtifactSet
		if validateRules != "" {
			artifacts, err = loadArtifacts(validateRules)
		} else {
			artifacts, err = compiler.Compile(doc, toTargets(validateTargets))
		}
		if err != nil {
			return err
		}

		checker := gates.NewChecker(gates.WithLogger(logger))
		rep := checker.Run(cmd.Context(), &gates.Input{
			Doc:       doc,
			Artifacts: artifacts,
			Config:    gateConfig(validateModel, artifacts),
		})
		auditValidation(doc.RunID, rep, logger)

		raw, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if validateReport != "" {
			if err := os.WriteFile(validateReport, append(raw, '\n'), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		} else {
			fmt.Println(string(raw))
		}

		if !headless {
			sum := report.Summarize(doc.RunID, doc, rep, nil)
			fmt.Fprintln(os.Stderr, report.RenderRun(sum))
		}
		if !rep.AllPassed && validateStrict {
			return engine.ErrValidationFailed
		}
		return nil
	},
}

// loadArtifacts reads previously compiled artifacts from a directory.
// Absent targets are skipped; an empty directory is an error because the
// artifact gate would have nothing to certify.
func loadArtifacts(dir string) (compiler.ArtifactSet, error) {
	artifacts := make(compiler.ArtifactSet)
	for _, t := range []compiler.Target{compiler.TargetRegex, compiler.TargetSQL, compiler.TargetJSON, compiler.TargetPython} {
		raw, err := os.ReadFile(filepath.Join(dir, "rules."+string(t)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read artifact: %w", err)
		}
		artifacts[t] = raw
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("no rule artifacts found under %s", dir)
	}
	return artifacts, nil
}

func toTargets(names []string) []compiler.Target {
	out := make([]compiler.Target, 0, len(names))
	for _, n := range names {
		out = append(out, compiler.Target(n))
	}
	return out
}

// gateConfig mirrors the engine's behavior: an unset model name stays absent
// so the config-completeness gate can refuse the run.
func gateConfig(model string, artifacts compiler.ArtifactSet) map[string]any {
	cfg := make(map[string]any)
	if model != "" {
		cfg["model_name"] = model
	}
	var targets []string
	for _, t := range artifacts.Targets() {
		targets = append(targets, string(t))
	}
	if len(targets) > 0 {
		cfg["targets"] = targets
	}
	return cfg
}

func auditValidation(runID string, rep *gates.Report, logger *slog.Logger) {
	if auditLog == "" {
		return
	}
	log, err := audit.Open(auditLog, audit.WithFallback(logger))
	if err != nil {
		logger.Warn("audit log unavailable", "error", err)
		return
	}
	defer log.Close()
	log.Append("validation_complete", runID, map[string]any{
		"all_passed":   rep.AllPassed,
		"passed_gates": rep.PassedGates,
		"total_gates":  rep.TotalGates,
	})
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateInput, "input", "", "IR document to certify")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "Directory of compiled artifacts to certify instead of compiling")
	validateCmd.Flags().StringVar(&validateModel, "model", "", "Extraction model name checked by the config gate")
	validateCmd.Flags().StringSliceVar(&validateTargets, "targets", nil, "Targets to compile when --rules is not given")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit non-zero when any gate fails")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "Write the gate report to a file instead of stdout")
}
