package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/pkg/classify"
)

var (
	classifyRules string
	classifyDoc   string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Route document metadata through a workflow ruleset",
	Long: `Evaluate a YAML decision-tree ruleset against flat document metadata and
print the matched workflows. Classification is routing advice only; it
never writes rule artifacts or IR.

Example:
  spanforge classify --rules workflows.yaml --doc meta.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if classifyRules == "" || classifyDoc == "" {
			return fmt.Errorf("--rules and --doc are both required")
		}

		rs, err := classify.LoadRuleSet(classifyRules)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(classifyDoc)
		if err != nil {
			return fmt.Errorf("read document metadata: %w", err)
		}
		var context map[string]any
		if err := json.Unmarshal(raw, &context); err != nil {
			return fmt.Errorf("parse document metadata %s: %w", classifyDoc, err)
		}

		result := rs.Evaluate(context)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyRules, "rules", "", "Workflow ruleset YAML")
	classifyCmd.Flags().StringVar(&classifyDoc, "doc", "", "Flat document metadata JSON")
}
