package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/pkg/backtest"
	"github.com/assafkip/spanforge/pkg/governance"
)

var (
	backtestPatterns string
	backtestClean    string
	backtestLabeled  string
	backtestOut      string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay candidate patterns against historical corpora",
	Long: `Measure how candidate patterns would have behaved: matches on the clean
corpus count as false positives, matches on labeled positives as true
positives. The report feeds confidence scoring in the governance lane.

Corpora are CSV files with a text,label header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if backtestPatterns == "" || backtestClean == "" || backtestLabeled == "" {
			return fmt.Errorf("--patterns, --clean and --labeled are all required")
		}

		candidates, err := governance.LoadExpansions(backtestPatterns)
		if err != nil {
			return err
		}
		patterns := uniquePatterns(candidates)
		if len(patterns) == 0 {
			return fmt.Errorf("no patterns found in %s", backtestPatterns)
		}

		clean, err := backtest.LoadCorpus(backtestClean)
		if err != nil {
			return err
		}
		labeled, err := backtest.LoadCorpus(backtestLabeled)
		if err != nil {
			return err
		}

		rep, err := backtest.Run(cmd.Context(), patterns, clean, labeled)
		if err != nil {
			return err
		}

		if backtestOut == "" {
			raw, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		}
		if err := rep.WriteFile(backtestOut); err != nil {
			return err
		}
		fmt.Printf("%d patterns over %d samples -> %s\n",
			len(rep.Rules), len(clean)+len(labeled), backtestOut)
		if len(rep.Skipped) > 0 {
			fmt.Printf("skipped %d uncompilable patterns\n", len(rep.Skipped))
		}
		return nil
	},
}

func uniquePatterns(candidates []governance.Candidate) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		if c.Pattern == "" || seen[c.Pattern] {
			continue
		}
		seen[c.Pattern] = true
		out = append(out, c.Pattern)
	}
	return out
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&backtestPatterns, "patterns", "", "Expansions JSON with candidate patterns")
	backtestCmd.Flags().StringVar(&backtestClean, "clean", "", "Clean corpus CSV (hits are false positives)")
	backtestCmd.Flags().StringVar(&backtestLabeled, "labeled", "", "Labeled corpus CSV (pos rows are true positives)")
	backtestCmd.Flags().StringVar(&backtestOut, "out", "", "Write the backtest report here instead of stdout")
}
