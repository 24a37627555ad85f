package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/pkg/audit"
	"github.com/assafkip/spanforge/pkg/governance"
)

var (
	governExpansions string
	governBacktest   string
	governPolicy     string
	governOut        string
)

var governCmd = &cobra.Command{
	Use:   "govern",
	Short: "Gate backtested candidates into deployment proposals",
	Long: `Run the advisory governance pass: enrich expansion candidates with their
backtest metrics, apply the decision pipeline, and write deployment
proposals for candidates that clear every gate.

Escalations are a terminal state with a recorded reason, not an error;
the command exits zero either way.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if governExpansions == "" {
			return fmt.Errorf("--expansions is required")
		}
		logger := newLogger()

		policy := governance.DefaultPolicy()
		if governPolicy != "" {
			var err error
			policy, err = governance.LoadPolicy(governPolicy)
			if err != nil {
				return err
			}
		}

		opts := []governance.OrchestratorOption{
			governance.WithPolicy(policy),
			governance.WithLogger(logger),
		}
		if auditLog != "" {
			log, err := audit.Open(auditLog, audit.WithFallback(logger))
			if err != nil {
				logger.Warn("audit log unavailable", "error", err)
			} else {
				defer log.Close()
				opts = append(opts, governance.WithAuditLog(log, ""))
			}
		}

		dest := governOut
		if dest == "" {
			dest = outDir
		}
		res, err := governance.NewOrchestrator(opts...).Run(cmd.Context(), governExpansions, governBacktest, dest)
		if err != nil {
			return err
		}

		sum := res.Report.Summary
		fmt.Printf("governance pass: %d candidates, %d approved, %d review, %d escalated\n",
			sum.TotalCandidates, sum.ReadyDeploy, sum.ReadyReview,
			sum.EscalateMissingConfidence+sum.EscalateMissingTier+sum.EscalateMissingMetadata+sum.EscalatedByRule)
		for _, c := range res.Report.Escalations {
			fmt.Printf("  escalated %q: %s (%s)\n", c.Pattern, c.Decision, c.EscalationReason)
		}
		fmt.Printf("proposals -> %s\n", res.ProposalsPath)
		fmt.Printf("plan      -> %s\n", res.PlanPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(governCmd)
	governCmd.Flags().StringVar(&governExpansions, "expansions", "", "Expansions JSON from the expand command")
	governCmd.Flags().StringVar(&governBacktest, "backtest", "", "Backtest report JSON (missing file means worst-case metrics)")
	governCmd.Flags().StringVar(&governPolicy, "policy", "", "Policy file (.yaml or .hcl); defaults apply when unset")
	governCmd.Flags().StringVar(&governOut, "out", "", "Governance output directory (defaults to --out)")
}
