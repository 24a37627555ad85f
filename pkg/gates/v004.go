package gates

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/assafkip/spanforge/pkg/compiler"
)

// ArtifactValidity is gate V-004: every compiled artifact is syntactically
// sound for its target runtime. The python check is purely static; nothing
// is ever executed.
type ArtifactValidity struct{}

func (ArtifactValidity) ID() string { return "V-004" }

func (ArtifactValidity) Describe() string {
	return "compiled artifacts are syntactically valid for their targets"
}

func (ArtifactValidity) Check(_ context.Context, in *Input) Result {
	var issues []string
	for _, target := range in.Artifacts.Targets() {
		content := string(in.Artifacts[target])
		switch target {
		case compiler.TargetRegex:
			issues = append(issues, checkRegexArtifact(content)...)
		case compiler.TargetJSON:
			issues = append(issues, checkJSONArtifact(content)...)
		case compiler.TargetPython:
			issues = append(issues, checkPythonArtifact(content)...)
		case compiler.TargetSQL:
			issues = append(issues, checkSQLArtifact(content)...)
		}
	}
	return fail(issues)
}

func checkRegexArtifact(content string) []string {
	var issues []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		if _, err := regexp.Compile(line); err != nil {
			issues = append(issues, fmt.Sprintf("regex artifact: pattern %q does not compile: %v", line, err))
		}
	}
	return issues
}

func checkJSONArtifact(content string) []string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return []string{fmt.Sprintf("json artifact: not a JSON object: %v", err)}
	}
	rules, ok := doc["rules"]
	if !ok {
		return []string{"json artifact: missing rules key"}
	}
	if _, ok := rules.([]any); !ok {
		return []string{"json artifact: rules is not an array"}
	}
	return nil
}

var pythonLiteralLine = regexp.MustCompile(`^\s*if (".*") in text:$`)

func checkPythonArtifact(content string) []string {
	var issues []string
	if !strings.Contains(content, "def check_indicators(") {
		issues = append(issues, "python artifact: check_indicators definition missing")
	}
	for _, line := range strings.Split(content, "\n") {
		m := pythonLiteralLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var s string
		if err := json.Unmarshal([]byte(m[1]), &s); err != nil {
			issues = append(issues, fmt.Sprintf("python artifact: literal %s is not a valid string: %v", m[1], err))
		}
	}
	return issues
}

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE"}

func checkSQLArtifact(content string) []string {
	var issues []string
	for n, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		upper := strings.ToUpper(trimmed)
		keyword := false
		for _, kw := range sqlKeywords {
			if strings.Contains(upper, kw) {
				keyword = true
				break
			}
		}
		if !keyword {
			continue
		}
		if strings.Count(trimmed, "'")%2 != 0 {
			issues = append(issues, fmt.Sprintf("sql artifact: unbalanced quotes on line %d", n+1))
		}
	}
	return issues
}
