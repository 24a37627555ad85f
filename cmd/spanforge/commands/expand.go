package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assafkip/spanforge/pkg/audit"
	spanconfig "github.com/assafkip/spanforge/pkg/config"
	"github.com/assafkip/spanforge/pkg/expand"
)

var (
	expandInput string
	expandOut   string
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Generate pattern candidates from evidence sentences",
	Long: `Run evidence-driven expansion over narrative sentences. Each sentence is
scanned for enumerated alternatives, digit ranges and literal sets; every
candidate keeps its evidence quote and parent spans.

Input is {"sentences":[{sent_id,text,spans}]} or a bare sentence array.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if expandInput == "" {
			return fmt.Errorf("--input is required")
		}
		logger := newLogger()

		sentences, err := loadSentences(expandInput)
		if err != nil {
			return err
		}

		cfg := spanconfig.DefaultExpandConfig()
		expander := expand.NewExpander(
			expand.WithRepeatMin(cfg.RepeatMin),
			expand.WithDenylist(cfg.Denylist),
			expand.WithLogger(logger),
		)
		candidates := expander.Expand(sentences)
		if candidates == nil {
			candidates = []expand.Candidate{}
		}

		if auditLog != "" {
			if log, err := audit.Open(auditLog, audit.WithFallback(logger)); err == nil {
				log.Append("expansion_complete", "", map[string]any{
					"sentences":  len(sentences),
					"candidates": len(candidates),
				})
				log.Close()
			}
		}

		raw, err := json.MarshalIndent(map[string]any{"expansions": candidates}, "", "  ")
		if err != nil {
			return err
		}
		if expandOut == "" {
			fmt.Println(string(raw))
			return nil
		}
		if err := os.WriteFile(expandOut, append(raw, '\n'), 0o644); err != nil {
			return fmt.Errorf("write expansions: %w", err)
		}
		fmt.Printf("%d candidates (%d ready) -> %s\n",
			len(candidates), countReady(candidates), expandOut)
		return nil
	},
}

func loadSentences(path string) ([]expand.Sentence, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}
	var wrapped struct {
		Sentences []expand.Sentence `json:"sentences"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Sentences) > 0 {
		return wrapped.Sentences, nil
	}
	var bare []expand.Sentence
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("parse sentences %s: %w", path, err)
	}
	return bare, nil
}

func countReady(candidates []expand.Candidate) int {
	n := 0
	for _, c := range candidates {
		if c.Status == expand.StatusReady {
			n++
		}
	}
	return n
}

func init() {
	rootCmd.AddCommand(expandCmd)
	expandCmd.Flags().StringVar(&expandInput, "input", "", "Evidence sentences JSON")
	expandCmd.Flags().StringVar(&expandOut, "out", "", "Write expansions JSON here instead of stdout")
}
