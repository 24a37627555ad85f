// Package backtest replays candidate patterns against historical corpora to
// measure how they would have behaved: hits on a clean corpus are false
// positives, hits on labeled positives are true positives. The numbers feed
// confidence scoring and governance; this package draws no conclusions.
package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sync"

	"github.com/assafkip/spanforge/internal/swarm"
)

// Metric holds the replay counts for one pattern.
type Metric struct {
	Matches           int     `json:"matches"`
	SamplesTested     int     `json:"samples_tested"`
	TP                int     `json:"tp"`
	FP                int     `json:"fp"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
	TruePositiveRate  float64 `json:"true_positive_rate"`
}

// Report maps each tested pattern to its metrics. Patterns that failed to
// compile are listed, not silently dropped.
type Report struct {
	Rules   map[string]Metric `json:"rules"`
	Skipped []string          `json:"skipped,omitempty"`
}

// Run replays every pattern against both corpora, fanning out across the
// worker pool. Counting is commutative, so pattern completion order does
// not matter.
func Run(ctx context.Context, patterns []string, clean, labeled Corpus) (*Report, error) {
	report := &Report{Rules: make(map[string]Metric, len(patterns))}
	if len(patterns) == 0 {
		return report, nil
	}

	pool := swarm.NewEngine()
	pool.Start(ctx)
	defer pool.Stop()

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(patterns))
	for _, pattern := range patterns {
		pool.Submit(func(ctx context.Context) error {
			defer wg.Done()

			re, err := regexp.Compile(pattern)
			if err != nil {
				mu.Lock()
				report.Skipped = append(report.Skipped, pattern)
				mu.Unlock()
				return fmt.Errorf("backtest: pattern %q: %w", pattern, err)
			}

			m := replay(ctx, re, clean, labeled)
			mu.Lock()
			report.Rules[pattern] = m
			mu.Unlock()
			return nil
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("backtest: run aborted: %w", err)
	}
	return report, nil
}

func replay(ctx context.Context, re *regexp.Regexp, clean, labeled Corpus) Metric {
	var m Metric
	for _, row := range clean {
		if ctx.Err() != nil {
			break
		}
		m.SamplesTested++
		if re.MatchString(row.Text) {
			m.Matches++
			m.FP++
		}
	}
	for _, row := range labeled {
		if ctx.Err() != nil {
			break
		}
		m.SamplesTested++
		hit := re.MatchString(row.Text)
		if hit {
			m.Matches++
		}
		if hit && row.Label == "pos" {
			m.TP++
		}
	}
	if m.SamplesTested > 0 {
		m.FalsePositiveRate = round6(float64(m.FP) / float64(m.SamplesTested))
		m.TruePositiveRate = round6(float64(m.TP) / float64(m.SamplesTested))
	}
	return m
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// LoadReport reads a backtest report from disk.
func LoadReport(path string) (*Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backtest: read report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("backtest: parse report %s: %w", path, err)
	}
	if report.Rules == nil {
		report.Rules = make(map[string]Metric)
	}
	return &report, nil
}

// WriteFile persists the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("backtest: marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("backtest: write report: %w", err)
	}
	return nil
}
