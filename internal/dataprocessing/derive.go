package dataprocessing

import (
	"context"
	"fmt"
	"strings"

	apperrors "sheetclean/internal/errors"
	"sheetclean/pkg/contracts/domain"
)

// CountryFromLocation returns the trimmed text after the last comma of a
// free-text address, e.g. "123 Main St, Springfield, US" → "US". Null, blank
// and non-text input yield null.
func CountryFromLocation(v domain.Value) domain.Value {
	s, ok := v.AsText()
	if !ok || strings.TrimSpace(s) == "" {
		return domain.Null()
	}
	if i := strings.LastIndex(s, ","); i >= 0 {
		s = s[i+1:]
	}
	return domain.Text(strings.TrimSpace(s))
}

// CountryExtraction derives Country from Location.
var CountryExtraction = domain.ColumnExtractionRule{
	Source:    "Location",
	New:       "Country",
	Transform: CountryFromLocation,
}

// DerivedColumnExtractor appends computed columns to tables.
type DerivedColumnExtractor struct {
	rules    []domain.ColumnExtractionRule
	reporter domain.Reporter
}

// NewDerivedColumnExtractor creates an extractor running rules in order.
func NewDerivedColumnExtractor(r domain.Reporter, rules ...domain.ColumnExtractionRule) *DerivedColumnExtractor {
	if r == nil {
		r = Discard
	}
	return &DerivedColumnExtractor{rules: rules, reporter: r}
}

// Extract applies every rule whose source column exists, creating or
// overwriting its destination column. It returns the number of columns
// written.
func (x *DerivedColumnExtractor) Extract(ctx context.Context, t *domain.Table) (int, error) {
	written := 0
	for _, rule := range x.rules {
		src, ok := t.Column(rule.Source)
		if !ok {
			x.reporter.Report(ctx, domain.Diagnostic{
				File:    t.Name,
				Stage:   domain.StageDerive,
				Kind:    domain.DiagColumnNotFound,
				Column:  rule.Source,
				Message: fmt.Sprintf("%s, %q not derived", apperrors.NewColumnNotFoundError(rule.Source).Message, rule.New),
			})
			continue
		}

		out := make([]domain.Value, len(src))
		for i, v := range src {
			out[i] = safeTransform(rule.Transform, v)
		}
		if err := t.SetColumn(rule.New, out); err != nil {
			return written, fmt.Errorf("derive %q from %q: %w", rule.New, rule.Source, err)
		}
		written++

		x.reporter.Report(ctx, domain.Diagnostic{
			File:    t.Name,
			Stage:   domain.StageDerive,
			Kind:    domain.DiagColumnDerived,
			Column:  rule.New,
			Count:   len(out),
			Message: fmt.Sprintf("new column %q created from %q", rule.New, rule.Source),
		})
	}
	return written, nil
}

// safeTransform guards against transforms that panic on unexpected input;
// such cells become null.
func safeTransform(fn func(domain.Value) domain.Value, v domain.Value) (out domain.Value) {
	if v.IsNull() || fn == nil {
		return domain.Null()
	}
	defer func() {
		if recover() != nil {
			out = domain.Null()
		}
	}()
	return fn(v)
}
