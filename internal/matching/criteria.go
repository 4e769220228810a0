// Package matching implements the pair-matching engine: eligibility
// evaluation against campaign criteria, candidate-graph construction and
// maximum-cardinality matching over the campaign roster. The package is a
// pure library with no transport or persistence dependencies; the
// orchestration layer loads data up front and consumes the result.
package matching

import "fmt"

// Rule defines how an attribute criterion constrains a candidate pair.
type Rule string

const (
	// RuleSame requires both employees to share the attribute value.
	RuleSame Rule = "same"
	// RuleNotSame requires the attribute values to differ.
	RuleNotSame Rule = "not_same"
)

// Criterion is a single (attribute key, rule) matching constraint.
type Criterion struct {
	Key  string `json:"attribute_key"`
	Rule Rule   `json:"rule"`
}

// ParseRule validates a raw rule string. Rules outside {same, not_same} are
// programmer/input errors and are rejected before they reach the hot path.
func ParseRule(raw string) (Rule, error) {
	switch Rule(raw) {
	case RuleSame:
		return RuleSame, nil
	case RuleNotSame:
		return RuleNotSame, nil
	default:
		return "", fmt.Errorf("invalid matching rule %q (want %q or %q)", raw, RuleSame, RuleNotSame)
	}
}

// Eligible reports whether two distinct employees form an admissible pair
// under the given criteria. Attribute lookups are soft: when either employee
// lacks a value for a criterion's key the criterion is skipped rather than
// failing the pair. Evaluation short-circuits on the first violation. With
// zero criteria every pair is eligible.
func Eligible(a, b string, attrs map[string]map[string]string, criteria []Criterion) bool {
	if len(criteria) == 0 {
		return true
	}

	attrsA := attrs[a]
	attrsB := attrs[b]

	for _, c := range criteria {
		valA, okA := attrsA[c.Key]
		valB, okB := attrsB[c.Key]
		if !okA || !okB {
			continue
		}

		switch c.Rule {
		case RuleSame:
			if valA != valB {
				return false
			}
		case RuleNotSame:
			if valA == valB {
				return false
			}
		}
	}

	return true
}
