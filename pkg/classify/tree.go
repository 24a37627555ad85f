package classify

import "fmt"

// Node combinators.
const (
	CombinatorAND = "AND"
	CombinatorOR  = "OR"
)

// Node is one decision tree node. A node with no conditions always
// matches; children are evaluated only under a matched parent.
type Node struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Conditions      []Condition `yaml:"conditions"`
	Combinator      string      `yaml:"combinator"`
	Workflow        string      `yaml:"workflow"`
	ConfidenceBoost float64     `yaml:"confidence_boost"`
	Children        []*Node     `yaml:"children"`
}

// NodeResult is the evaluation outcome of one node and its subtree.
// Unmatched nodes carry no boost, workflow, or child results.
type NodeResult struct {
	NodeID          string       `json:"node_id"`
	Matched         bool         `json:"matched"`
	ConfidenceBoost float64      `json:"confidence_boost"`
	Workflow        string       `json:"workflow,omitempty"`
	Children        []NodeResult `json:"children,omitempty"`
}

// prepare defaults the combinator to AND and validates the subtree.
func (n *Node) prepare() error {
	if n.ID == "" {
		return fmt.Errorf("classify: node %q has no id", n.Name)
	}
	switch n.Combinator {
	case "":
		n.Combinator = CombinatorAND
	case CombinatorAND, CombinatorOR:
	default:
		return fmt.Errorf("classify: node %s: unsupported combinator %q", n.ID, n.Combinator)
	}
	for i := range n.Conditions {
		if err := n.Conditions[i].prepare(); err != nil {
			return fmt.Errorf("%w (node %s)", err, n.ID)
		}
	}
	for _, child := range n.Children {
		if err := child.prepare(); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate tests the node's conditions against the context and, on a
// match, recurses into its children.
func (n *Node) Evaluate(context map[string]any) NodeResult {
	matched := true
	if len(n.Conditions) > 0 {
		if n.Combinator == CombinatorOR {
			matched = false
			for i := range n.Conditions {
				if n.Conditions[i].Evaluate(context) {
					matched = true
					break
				}
			}
		} else {
			for i := range n.Conditions {
				if !n.Conditions[i].Evaluate(context) {
					matched = false
					break
				}
			}
		}
	}

	result := NodeResult{NodeID: n.ID, Matched: matched}
	if !matched {
		return result
	}
	result.ConfidenceBoost = n.ConfidenceBoost
	result.Workflow = n.Workflow
	for _, child := range n.Children {
		result.Children = append(result.Children, child.Evaluate(context))
	}
	return result
}
