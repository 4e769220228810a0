package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	rule, err := ParseRule("same")
	require.NoError(t, err)
	assert.Equal(t, RuleSame, rule)

	rule, err = ParseRule("not_same")
	require.NoError(t, err)
	assert.Equal(t, RuleNotSame, rule)

	_, err = ParseRule("different")
	assert.Error(t, err)

	_, err = ParseRule("")
	assert.Error(t, err)
}

func TestEligibleSameRule(t *testing.T) {
	attrs := map[string]map[string]string{
		"emp-a": {"department": "Sales"},
		"emp-b": {"department": "Sales"},
		"emp-c": {"department": "Engineering"},
	}
	criteria := []Criterion{{Key: "department", Rule: RuleSame}}

	assert.True(t, Eligible("emp-a", "emp-b", attrs, criteria))
	assert.False(t, Eligible("emp-a", "emp-c", attrs, criteria))
}

func TestEligibleNotSameRule(t *testing.T) {
	attrs := map[string]map[string]string{
		"emp-a": {"site": "Paris"},
		"emp-b": {"site": "Paris"},
		"emp-c": {"site": "Lyon"},
	}
	criteria := []Criterion{{Key: "site", Rule: RuleNotSame}}

	assert.False(t, Eligible("emp-a", "emp-b", attrs, criteria))
	assert.True(t, Eligible("emp-a", "emp-c", attrs, criteria))
}

func TestEligibleMissingAttributeIsSkipped(t *testing.T) {
	// An absent value never blocks a pair, it only fails to constrain it.
	attrs := map[string]map[string]string{
		"emp-a": {"department": "Sales"},
		"emp-b": {},
	}
	criteria := []Criterion{{Key: "department", Rule: RuleSame}}

	assert.True(t, Eligible("emp-a", "emp-b", attrs, criteria))
	assert.True(t, Eligible("emp-b", "emp-a", attrs, criteria))

	// Employee entirely absent from the attribute map behaves the same way.
	assert.True(t, Eligible("emp-a", "emp-z", attrs, criteria))
}

func TestEligibleMultipleCriteriaAllMustHold(t *testing.T) {
	attrs := map[string]map[string]string{
		"emp-a": {"department": "Sales", "seniority": "junior"},
		"emp-b": {"department": "Sales", "seniority": "junior"},
	}
	criteria := []Criterion{
		{Key: "department", Rule: RuleSame},
		{Key: "seniority", Rule: RuleNotSame},
	}

	assert.False(t, Eligible("emp-a", "emp-b", attrs, criteria))
}

func TestEligibleNoCriteriaFastPath(t *testing.T) {
	assert.True(t, Eligible("emp-a", "emp-b", nil, nil))
}
