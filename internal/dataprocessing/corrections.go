package dataprocessing

import (
	"context"
	"fmt"

	apperrors "sheetclean/internal/errors"
	"sheetclean/pkg/contracts/domain"
)

// CorrectionResult summarises one pass of a rule set over a table.
type CorrectionResult struct {
	// Replaced is the total number of cells rewritten.
	Replaced int
	// Skipped counts rule/column applications skipped for a missing column.
	Skipped int
}

// CorrectionEngine applies correction rules to tables. It only reads the
// rule set, so one engine may serve many tables concurrently.
type CorrectionEngine struct {
	reporter domain.Reporter
}

// NewCorrectionEngine creates an engine reporting to r. A nil reporter
// discards diagnostics.
func NewCorrectionEngine(r domain.Reporter) *CorrectionEngine {
	if r == nil {
		r = Discard
	}
	return &CorrectionEngine{reporter: r}
}

// Apply runs every rule in order against t. Later rules observe the effect
// of earlier ones. A rule never fails: missing columns are reported and
// skipped.
func (e *CorrectionEngine) Apply(ctx context.Context, t *domain.Table, rules *domain.RuleSet) CorrectionResult {
	var res CorrectionResult
	for _, rule := range rules.Rules() {
		for _, target := range rule.Targets() {
			if !t.HasColumn(target) {
				e.columnNotFound(ctx, t, target, rule)
				res.Skipped++
				continue
			}

			switch r := rule.(type) {
			case *domain.MappedReplacement:
				res.Replaced += e.applyMap(ctx, t, target, r)
			case *domain.ValueReplacement:
				n, ok := e.applyValue(ctx, t, target, r)
				if !ok {
					res.Skipped++
				}
				res.Replaced += n
			}
		}
	}
	return res
}

func (e *CorrectionEngine) applyMap(ctx context.Context, t *domain.Table, target string, r *domain.MappedReplacement) int {
	total := 0
	for _, p := range r.Pairs {
		n := 0
		for i := 0; i < t.Len(); i++ {
			v, _ := t.Get(i, target)
			if v.Equal(p.Wrong) {
				t.Set(i, target, p.Correct)
				n++
			}
		}
		total += n

		wrong, correct := p.Wrong, p.Correct
		d := domain.Diagnostic{
			File:    t.Name,
			Stage:   domain.StageCorrect,
			Kind:    domain.DiagValuesReplaced,
			Column:  target,
			Count:   n,
			Wrong:   &wrong,
			Correct: &correct,
			Message: fmt.Sprintf("%s: %s → %s (%dx)", target, wrong, correct, n),
		}
		if n == 0 {
			d.Kind = domain.DiagNoMatch
			d.Message = fmt.Sprintf("%s: no cell equals %q, mapping to %q unused", target, wrong.String(), correct.String())
		}
		e.reporter.Report(ctx, d)
	}
	return total
}

func (e *CorrectionEngine) applyValue(ctx context.Context, t *domain.Table, target string, r *domain.ValueReplacement) (int, bool) {
	conditional := r.Conditional()
	if conditional && !t.HasColumn(r.MatchColumn) {
		e.columnNotFound(ctx, t, r.MatchColumn, r)
		return 0, false
	}

	var selected []int
	for i := 0; i < t.Len(); i++ {
		v, _ := t.Get(i, target)
		if !v.Equal(r.Wrong) {
			continue
		}
		if conditional {
			m, _ := t.Get(i, r.MatchColumn)
			if !m.Equal(r.MatchValue) {
				continue
			}
		}
		selected = append(selected, i)
	}

	for _, i := range selected {
		t.Set(i, target, r.Correct)
	}

	if n := len(selected); n > 0 {
		wrong, correct := r.Wrong, r.Correct
		e.reporter.Report(ctx, domain.Diagnostic{
			File:    t.Name,
			Stage:   domain.StageCorrect,
			Kind:    domain.DiagValuesReplaced,
			Column:  target,
			Count:   n,
			Wrong:   &wrong,
			Correct: &correct,
			Message: fmt.Sprintf("%s: %s → %s (%dx)", target, wrong, correct, n),
		})
	}
	return len(selected), true
}

func (e *CorrectionEngine) columnNotFound(ctx context.Context, t *domain.Table, column string, rule domain.CorrectionRule) {
	e.reporter.Report(ctx, domain.Diagnostic{
		File:    t.Name,
		Stage:   domain.StageCorrect,
		Kind:    domain.DiagColumnNotFound,
		Column:  column,
		Message: fmt.Sprintf("%s, %s correction skipped", apperrors.NewColumnNotFoundError(column).Message, rule.Describe()),
	})
}
