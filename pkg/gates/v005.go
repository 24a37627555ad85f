package gates

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/assafkip/spanforge/pkg/ir"
)

// requiredConfigFields must be pinned in the run configuration; a run whose
// model or target set was defaulted silently is not reproducible.
var requiredConfigFields = []string{"model_name", "targets"}

// NoInferredFields is gate V-005: the Unspecified sentinel survives nowhere,
// and the run configuration pins the fields that make a run reproducible.
type NoInferredFields struct{}

func (NoInferredFields) ID() string { return "V-005" }

func (NoInferredFields) Describe() string {
	return "no unspecified placeholders remain and the run config is pinned"
}

func (NoInferredFields) Check(_ context.Context, in *Input) Result {
	var issues []string

	raw, err := json.Marshal(in.Doc)
	if err != nil {
		issues = append(issues, fmt.Sprintf("document not serializable: %v", err))
	} else if strings.Contains(string(raw), ir.Unspecified) {
		issues = append(issues, "document carries an "+ir.Unspecified+" placeholder")
	}

	for _, target := range in.Artifacts.Targets() {
		if strings.Contains(string(in.Artifacts[target]), ir.Unspecified) {
			issues = append(issues,
				fmt.Sprintf("%s artifact carries an %s placeholder", target, ir.Unspecified))
		}
	}

	for _, field := range requiredConfigFields {
		if _, ok := in.Config[field]; !ok {
			issues = append(issues, fmt.Sprintf("run config missing required field %q", field))
		}
	}
	return fail(issues)
}
