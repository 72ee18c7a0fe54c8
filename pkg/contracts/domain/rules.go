package domain

// CorrectionRule is one declarative correction. It is a closed set of two
// variants: *MappedReplacement and *ValueReplacement.
type CorrectionRule interface {
	// Targets returns the columns the rule is applied to, independently.
	Targets() []string
	// Describe returns a short human-readable summary for logs.
	Describe() string

	correctionRule()
}

// ReplacePair is one wrong → correct entry of a replace map.
type ReplacePair struct {
	Wrong   Value `json:"wrong"`
	Correct Value `json:"correct"`
}

// MappedReplacement replaces every exact occurrence of each Wrong value with
// its Correct value. Pairs are applied in document order.
type MappedReplacement struct {
	TargetColumns []string      `json:"target_columns" validate:"required,min=1,dive,required"`
	Pairs         []ReplacePair `json:"replace_map" validate:"required,min=1"`
}

func (r *MappedReplacement) Targets() []string { return r.TargetColumns }

func (r *MappedReplacement) Describe() string {
	return "replace_map"
}

func (*MappedReplacement) correctionRule() {}

// ValueReplacement replaces Wrong with Correct in the target columns. When
// MatchColumn is set and MatchValue is non-null, only rows whose MatchColumn
// equals MatchValue are eligible.
type ValueReplacement struct {
	TargetColumns []string `json:"target_columns" validate:"required,min=1,dive,required"`
	Wrong         Value    `json:"wrong_value"`
	Correct       Value    `json:"correct_value"`
	MatchColumn   string   `json:"match_column,omitempty"`
	MatchValue    Value    `json:"match_value"`
}

func (r *ValueReplacement) Targets() []string { return r.TargetColumns }

func (r *ValueReplacement) Describe() string {
	if r.Conditional() {
		return "wrong_value if " + r.MatchColumn + " = " + r.MatchValue.String()
	}
	return "wrong_value"
}

// Conditional reports whether the rule is narrowed by a match column.
func (r *ValueReplacement) Conditional() bool {
	return r.MatchColumn != "" && !r.MatchValue.IsNull()
}

func (*ValueReplacement) correctionRule() {}

// RuleSet is an ordered, read-only collection of correction rules. It is safe
// for concurrent use once built.
type RuleSet struct {
	rules []CorrectionRule
}

// NewRuleSet builds a rule set from rules in application order.
func NewRuleSet(rules ...CorrectionRule) *RuleSet {
	rs := &RuleSet{rules: make([]CorrectionRule, len(rules))}
	copy(rs.rules, rules)
	return rs
}

// Rules returns the rules in order. The returned slice is a copy.
func (rs *RuleSet) Rules() []CorrectionRule {
	if rs == nil {
		return nil
	}
	out := make([]CorrectionRule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// ColumnExtractionRule derives the New column from the Source column.
// Transform must be pure and must return null for null or blank input.
type ColumnExtractionRule struct {
	Source    string
	New       string
	Transform func(Value) Value
}
