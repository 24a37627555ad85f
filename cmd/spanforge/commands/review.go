package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/internal/report"
	"github.com/assafkip/spanforge/internal/ui"
	"github.com/assafkip/spanforge/pkg/governance"
	"github.com/assafkip/spanforge/pkg/storage"
)

var reviewRun string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively review runs, candidates and proposals",
	Long: `Open the review screen over a run directory: gate verdicts per pipeline
run, governance candidates from the latest advisory pass, and the
deployment proposals it produced.

With --headless the run overview prints as plain text instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := reviewRun
		if root == "" {
			root = outDir
		}

		store := storage.NewLocalStore(root)
		runs, err := report.LoadRuns(cmd.Context(), store)
		if err != nil {
			return err
		}
		candidates, proposals := loadGovernanceRun(root)

		if headless {
			fmt.Println(report.RenderRuns(runs))
			fmt.Printf("\n%d governance candidates, %d proposals\n", len(candidates), len(proposals))
			return nil
		}
		return ui.Run(ui.NewModel(runs, candidates, proposals))
	},
}

// loadGovernanceRun reads the newest governance pass under root. Advisory
// output is optional; review still works on a directory with only compile
// runs in it.
func loadGovernanceRun(root string) ([]governance.Candidate, []governance.Proposal) {
	dirs, err := filepath.Glob(filepath.Join(root, "run_*"))
	if err != nil || len(dirs) == 0 {
		return nil, nil
	}
	sort.Strings(dirs)

	for i := len(dirs) - 1; i >= 0; i-- {
		raw, err := os.ReadFile(filepath.Join(dirs[i], "plan.json"))
		if err != nil {
			continue
		}
		var plan struct {
			Candidates []governance.Candidate `json:"candidates"`
		}
		if err := json.Unmarshal(raw, &plan); err != nil {
			continue
		}

		var wire struct {
			Proposals []governance.Proposal `json:"proposals"`
		}
		if raw, err := os.ReadFile(filepath.Join(dirs[i], "proposals", "deployment_proposals.json")); err == nil {
			_ = json.Unmarshal(raw, &wire)
		}
		return plan.Candidates, wire.Proposals
	}
	return nil, nil
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewRun, "run", "", "Run directory to review (defaults to --out)")
}
