package rules

import (
	"fmt"
	"io"
	"sort"

	"sheetclean/pkg/contracts/domain"
)

// Summary describes a loaded rule set without applying it.
type Summary struct {
	Rules       int      `json:"rules"`
	MapRules    int      `json:"map_rules"`
	ValueRules  int      `json:"value_rules"`
	Conditional int      `json:"conditional_rules"`
	Pairs       int      `json:"replace_pairs"`
	Columns     []string `json:"columns"`
}

// Summarize counts the rules of rs by shape and lists every column they
// target or match on, sorted.
func Summarize(rs *domain.RuleSet) Summary {
	s := Summary{Rules: rs.Len()}
	cols := map[string]struct{}{}

	for _, r := range rs.Rules() {
		for _, c := range r.Targets() {
			cols[c] = struct{}{}
		}
		switch rule := r.(type) {
		case *domain.MappedReplacement:
			s.MapRules++
			s.Pairs += len(rule.Pairs)
		case *domain.ValueReplacement:
			s.ValueRules++
			if rule.Conditional() {
				s.Conditional++
				cols[rule.MatchColumn] = struct{}{}
			}
		}
	}

	s.Columns = make([]string, 0, len(cols))
	for c := range cols {
		s.Columns = append(s.Columns, c)
	}
	sort.Strings(s.Columns)
	return s
}

// Print writes a human-readable listing of rs followed by its summary.
func Print(w io.Writer, rs *domain.RuleSet) error {
	for i, r := range rs.Rules() {
		if _, err := fmt.Fprintf(w, "%3d  %-40s %v\n", i, r.Describe(), r.Targets()); err != nil {
			return err
		}
	}
	s := Summarize(rs)
	_, err := fmt.Fprintf(w, "\n%d rules (%d replace_map with %d pairs, %d wrong_value of which %d conditional) over %d columns\n",
		s.Rules, s.MapRules, s.Pairs, s.ValueRules, s.Conditional, len(s.Columns))
	return err
}
