// Package classify routes documents to analysis workflows through
// YAML-configured decision trees. It supplies routing metadata only and
// never writes authoritative pipeline state.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Condition operators. The set is closed: rulesets naming anything else
// are rejected at load time.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpGt       = "gt"
	OpLt       = "lt"
	OpGe       = "ge"
	OpLe       = "le"
	OpIn       = "in"
	OpNotIn    = "not_in"
	OpContains = "contains"
	OpRegex    = "regex"
)

// Condition is a single field test against the evaluation context.
type Condition struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`

	re *regexp.Regexp
}

// prepare validates the operator and value shape and precompiles regex
// patterns. Called once at ruleset load so evaluation never fails.
func (c *Condition) prepare() error {
	switch c.Operator {
	case OpEq, OpNe, OpGt, OpLt, OpGe, OpLe, OpContains:
	case OpIn, OpNotIn:
		if _, ok := c.Value.([]any); !ok {
			if _, ok := c.Value.([]string); !ok {
				return fmt.Errorf("classify: operator %s on field %s needs a list value", c.Operator, c.Field)
			}
		}
	case OpRegex:
		pattern, ok := c.Value.(string)
		if !ok {
			return fmt.Errorf("classify: regex condition on field %s needs a string pattern", c.Field)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("classify: condition on field %s: %w", c.Field, err)
		}
		c.re = re
	default:
		return fmt.Errorf("classify: unsupported operator %q on field %s", c.Operator, c.Field)
	}
	return nil
}

// Evaluate tests the condition against the context. A field absent from
// the context never matches, regardless of operator.
func (c *Condition) Evaluate(context map[string]any) bool {
	fieldValue, ok := context[c.Field]
	if !ok {
		return false
	}

	switch c.Operator {
	case OpEq:
		return looseEqual(fieldValue, c.Value)
	case OpNe:
		return !looseEqual(fieldValue, c.Value)
	case OpGt:
		cmp, ok := compare(fieldValue, c.Value)
		return ok && cmp > 0
	case OpLt:
		cmp, ok := compare(fieldValue, c.Value)
		return ok && cmp < 0
	case OpGe:
		cmp, ok := compare(fieldValue, c.Value)
		return ok && cmp >= 0
	case OpLe:
		cmp, ok := compare(fieldValue, c.Value)
		return ok && cmp <= 0
	case OpIn:
		return member(fieldValue, c.Value)
	case OpNotIn:
		return !member(fieldValue, c.Value)
	case OpContains:
		return strings.Contains(
			strings.ToLower(stringify(fieldValue)),
			strings.ToLower(stringify(c.Value)))
	case OpRegex:
		re := c.re
		if re == nil {
			pattern, ok := c.Value.(string)
			if !ok {
				return false
			}
			var err error
			re, err = regexp.Compile(pattern)
			if err != nil {
				return false
			}
		}
		return re.MatchString(stringify(fieldValue))
	}
	return false
}

func stringify(v any) string {
	return fmt.Sprint(v)
}

// looseEqual compares across the numeric types YAML and JSON decode into,
// so a ruleset's 5 matches a context's 5.0.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		return bok && as == bs
	}
	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		return bok && ab == bb
	}
	return false
}

// compare orders two values: numerically when both are numbers,
// lexicographically when both are strings.
func compare(a, b any) (int, bool) {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs), true
		}
	}
	return 0, false
}

func member(needle, haystack any) bool {
	switch list := haystack.(type) {
	case []any:
		for _, el := range list {
			if looseEqual(needle, el) {
				return true
			}
		}
	case []string:
		for _, el := range list {
			if looseEqual(needle, el) {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
