package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/pkg/audit"
)

var (
	auditVerifyLog string
	auditTailCount int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the tamper-evident audit log",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Walk the full hash chain and report every break",
	Long: `Recompute every entry hash and check each link to its predecessor. All
mismatches are reported, not just the first; unparseable lines count as
corrupted. A broken chain exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := auditVerifyLog
		if path == "" {
			path = auditLog
		}
		result, err := audit.VerifyFile(path)
		if err != nil {
			return err
		}

		if headless {
			raw, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
		} else {
			fmt.Printf("entries:  %d\nverified: %d\n", result.TotalEntries, result.VerifiedEntries)
			for _, issue := range result.Issues {
				fmt.Printf("  line %d: %s\n", issue.Line, issue.Detail)
			}
			if result.Intact {
				fmt.Println("chain INTACT")
			} else {
				fmt.Println("chain CORRUPTED")
			}
		}
		if !result.Intact {
			return fmt.Errorf("audit chain corrupted: %d issue(s)", len(result.Issues))
		}
		return nil
	},
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the most recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := audit.Open(auditLog, audit.WithFallback(newLogger()))
		if err != nil {
			return err
		}
		defer log.Close()

		entries, err := log.RecentEntries(auditTailCount)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		for _, entry := range entries {
			if err := enc.Encode(entry); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditVerifyCmd.Flags().StringVar(&auditVerifyLog, "log", "", "Audit log to verify (defaults to --audit-log)")
	auditTailCmd.Flags().IntVarP(&auditTailCount, "count", "n", 10, "Number of entries to print")
}
