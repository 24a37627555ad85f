package governance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	yaml "gopkg.in/yaml.v2"
)

// LoadPolicy reads a policy file, dispatching on extension. YAML and HCL
// carry the same fields; both merge over DefaultPolicy so a partial file
// only overrides what it names.
func LoadPolicy(path string) (Policy, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLPolicy(path)
	case ".hcl":
		return loadHCLPolicy(path)
	default:
		return Policy{}, fmt.Errorf("governance: unsupported policy format %q", filepath.Ext(path))
	}
}

// policyFile is the YAML wire shape. Pointer scalars distinguish "absent"
// from explicit zero values so false/0 can be set deliberately.
type policyFile struct {
	MaxFPR               *float64         `yaml:"max_fpr"`
	RequireJustification *bool            `yaml:"require_justification"`
	RequireAdapter       *bool            `yaml:"require_adapter"`
	AllowedTargets       []string         `yaml:"allowed_targets"`
	Tiers                []Tier           `yaml:"tiers"`
	Rules                []EscalationRule `yaml:"rules"`
}

func loadYAMLPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("governance: read policy: %w", err)
	}
	var pf policyFile
	if err := yaml.UnmarshalStrict(raw, &pf); err != nil {
		return Policy{}, fmt.Errorf("governance: parse policy %s: %w", path, err)
	}

	p := DefaultPolicy()
	if pf.MaxFPR != nil {
		p.MaxFPR = *pf.MaxFPR
	}
	if pf.RequireJustification != nil {
		p.RequireJustification = *pf.RequireJustification
	}
	if pf.RequireAdapter != nil {
		p.RequireAdapter = *pf.RequireAdapter
	}
	if pf.AllowedTargets != nil {
		p.AllowedTargets = pf.AllowedTargets
	}
	if len(pf.Tiers) > 0 {
		p.Tiers = pf.Tiers
	}
	p.Rules = pf.Rules
	return p, nil
}

func loadHCLPolicy(path string) (Policy, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Policy{}, fmt.Errorf("governance: parse policy %s: %s", path, diags.Error())
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return Policy{}, fmt.Errorf("governance: policy %s: unexpected body type", path)
	}

	p := DefaultPolicy()
	for name, attr := range body.Attributes {
		v, vdiags := attr.Expr.Value(nil)
		if vdiags.HasErrors() {
			return Policy{}, fmt.Errorf("governance: policy %s: attribute %s: %s", path, name, vdiags.Error())
		}
		switch name {
		case "max_fpr":
			f, ok := ctyFloat(v)
			if !ok {
				return Policy{}, fmt.Errorf("governance: policy %s: max_fpr must be a number", path)
			}
			p.MaxFPR = f
		case "require_justification":
			b, ok := ctyBool(v)
			if !ok {
				return Policy{}, fmt.Errorf("governance: policy %s: require_justification must be a bool", path)
			}
			p.RequireJustification = b
		case "require_adapter":
			b, ok := ctyBool(v)
			if !ok {
				return Policy{}, fmt.Errorf("governance: policy %s: require_adapter must be a bool", path)
			}
			p.RequireAdapter = b
		case "allowed_targets":
			targets, ok := ctyStrings(v)
			if !ok {
				return Policy{}, fmt.Errorf("governance: policy %s: allowed_targets must be a list of strings", path)
			}
			p.AllowedTargets = targets
		default:
			return Policy{}, fmt.Errorf("governance: policy %s: unsupported attribute %q", path, name)
		}
	}

	var tiers []Tier
	for _, block := range body.Blocks {
		switch block.Type {
		case "tier":
			if len(block.Labels) != 1 {
				return Policy{}, fmt.Errorf("governance: policy %s: tier block needs exactly one label", path)
			}
			t := Tier{Name: block.Labels[0]}
			for name, attr := range block.Body.Attributes {
				v, vdiags := attr.Expr.Value(nil)
				if vdiags.HasErrors() {
					return Policy{}, fmt.Errorf("governance: policy %s: tier %s: %s", path, t.Name, vdiags.Error())
				}
				f, ok := ctyFloat(v)
				if !ok {
					return Policy{}, fmt.Errorf("governance: policy %s: tier %s: %s must be a number", path, t.Name, name)
				}
				switch name {
				case "min_confidence":
					t.MinConfidence = f
				case "max_fpr":
					t.MaxFPR = f
				default:
					return Policy{}, fmt.Errorf("governance: policy %s: tier %s: unsupported attribute %q", path, t.Name, name)
				}
			}
			tiers = append(tiers, t)
		case "rule":
			if len(block.Labels) != 1 {
				return Policy{}, fmt.Errorf("governance: policy %s: rule block needs exactly one label", path)
			}
			r := EscalationRule{ID: block.Labels[0]}
			for name, attr := range block.Body.Attributes {
				v, vdiags := attr.Expr.Value(nil)
				if vdiags.HasErrors() {
					return Policy{}, fmt.Errorf("governance: policy %s: rule %s: %s", path, r.ID, vdiags.Error())
				}
				s, ok := ctyString(v)
				if !ok {
					return Policy{}, fmt.Errorf("governance: policy %s: rule %s: %s must be a string", path, r.ID, name)
				}
				switch name {
				case "condition":
					r.Condition = s
				case "action":
					r.Action = s
				default:
					return Policy{}, fmt.Errorf("governance: policy %s: rule %s: unsupported attribute %q", path, r.ID, name)
				}
			}
			p.Rules = append(p.Rules, r)
		default:
			return Policy{}, fmt.Errorf("governance: policy %s: unsupported block %q", path, block.Type)
		}
	}
	if len(tiers) > 0 {
		p.Tiers = tiers
	}
	return p, nil
}

func ctyFloat(v cty.Value) (float64, bool) {
	if v.Type() != cty.Number {
		return 0, false
	}
	f, _ := v.AsBigFloat().Float64()
	return f, true
}

func ctyBool(v cty.Value) (bool, bool) {
	if v.Type() != cty.Bool {
		return false, false
	}
	return v.True(), true
}

func ctyString(v cty.Value) (string, bool) {
	if v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}

func ctyStrings(v cty.Value) ([]string, bool) {
	if !v.CanIterateElements() {
		return nil, false
	}
	out := []string{}
	for _, el := range v.AsValueSlice() {
		s, ok := ctyString(el)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
