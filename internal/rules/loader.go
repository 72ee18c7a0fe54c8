package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "sheetclean/internal/errors"
	"sheetclean/pkg/contracts/domain"
)

// Format is the encoding of a rule document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document keys.
const (
	keyTargetColumn  = "target_column"
	keyTargetColumns = "target_columns"
	keyReplaceMap    = "replace_map"
	keyWrongValue    = "wrong_value"
	keyCorrectValue  = "correct_value"
	keyMatchColumn   = "match_column"
	keyMatchValue    = "match_value"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormatFor picks the document format from a file extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads the rule document at path. A missing file is not an error and
// yields an empty rule set. Any other read failure or a malformed document
// is a CONFIG error.
func Load(path string) (*domain.RuleSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewRuleSet(), nil
	}
	if err != nil {
		return nil, apperrors.NewConfigError("read rule document", err).WithContext("path", path)
	}

	rs, err := Parse(data, FormatFor(path))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return rs, nil
}

// Parse decodes a rule document: a sequence of rule mappings, applied in
// document order.
func Parse(data []byte, format Format) (*domain.RuleSet, error) {
	var (
		doc any
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = decodeYAML(data)
	default:
		doc, err = decodeJSON(data)
	}
	if err != nil {
		return nil, apperrors.NewConfigError("malformed rule document", err).WithContext("format", string(format))
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, apperrors.NewConfigError("rule document must be a list of rules", nil)
	}

	rules := make([]domain.CorrectionRule, 0, len(items))
	for i, item := range items {
		obj, ok := item.(object)
		if !ok {
			return nil, ruleError(i, "rule must be a mapping", nil)
		}
		rule, err := buildRule(obj)
		if err != nil {
			return nil, ruleError(i, "invalid correction rule", err)
		}
		if err := validate.Struct(rule); err != nil {
			return nil, ruleError(i, "invalid correction rule", err)
		}
		rules = append(rules, rule)
	}
	return domain.NewRuleSet(rules...), nil
}

func ruleError(index int, msg string, cause error) error {
	return apperrors.NewConfigError(msg, cause).WithContext("rule_index", index)
}

func buildRule(obj object) (domain.CorrectionRule, error) {
	targets, err := targetColumns(obj)
	if err != nil {
		return nil, err
	}

	hasMap := obj.has(keyReplaceMap)
	hasValue := obj.has(keyWrongValue) && obj.has(keyCorrectValue)
	switch {
	case hasMap && hasValue:
		return nil, fmt.Errorf("rule has both %s and %s/%s", keyReplaceMap, keyWrongValue, keyCorrectValue)
	case hasMap:
		raw, _ := obj.get(keyReplaceMap)
		pairs, err := replacePairs(raw)
		if err != nil {
			return nil, err
		}
		return &domain.MappedReplacement{TargetColumns: targets, Pairs: pairs}, nil
	case hasValue:
		return valueReplacement(obj, targets)
	default:
		return nil, fmt.Errorf("rule needs %s or both %s and %s", keyReplaceMap, keyWrongValue, keyCorrectValue)
	}
}

// targetColumns prefers a non-empty target_columns list over target_column.
func targetColumns(obj object) ([]string, error) {
	if raw, ok := obj.get(keyTargetColumns); ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s must be a list of column names", keyTargetColumns)
		}
		if len(list) > 0 {
			out := make([]string, len(list))
			for i, c := range list {
				name, ok := c.(string)
				if !ok {
					return nil, fmt.Errorf("%s[%d] must be a column name", keyTargetColumns, i)
				}
				out[i] = name
			}
			return out, nil
		}
	}

	if raw, ok := obj.get(keyTargetColumn); ok && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a column name", keyTargetColumn)
		}
		return []string{name}, nil
	}
	return nil, fmt.Errorf("rule names no %s or %s", keyTargetColumn, keyTargetColumns)
}

// replacePairs converts a replace_map mapping into ordered pairs. A key
// repeated later in the mapping overrides the earlier value in place.
func replacePairs(raw any) ([]domain.ReplacePair, error) {
	obj, ok := raw.(object)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping", keyReplaceMap)
	}

	pairs := make([]domain.ReplacePair, 0, len(obj))
	for _, e := range obj {
		wrong, err := scalar(e.Key, keyReplaceMap+" key")
		if err != nil {
			return nil, err
		}
		correct, err := scalar(e.Value, fmt.Sprintf("%s[%v]", keyReplaceMap, e.Key))
		if err != nil {
			return nil, err
		}

		replaced := false
		for i := range pairs {
			if sameKey(pairs[i].Wrong, wrong) {
				pairs[i].Correct = correct
				replaced = true
				break
			}
		}
		if !replaced {
			pairs = append(pairs, domain.ReplacePair{Wrong: wrong, Correct: correct})
		}
	}
	return pairs, nil
}

func sameKey(a, b domain.Value) bool {
	return a.Equal(b) || (a.IsNull() && b.IsNull())
}

func valueReplacement(obj object, targets []string) (*domain.ValueReplacement, error) {
	rawWrong, _ := obj.get(keyWrongValue)
	wrong, err := scalar(rawWrong, keyWrongValue)
	if err != nil {
		return nil, err
	}
	rawCorrect, _ := obj.get(keyCorrectValue)
	correct, err := scalar(rawCorrect, keyCorrectValue)
	if err != nil {
		return nil, err
	}

	rule := &domain.ValueReplacement{TargetColumns: targets, Wrong: wrong, Correct: correct}

	if raw, ok := obj.get(keyMatchColumn); ok && raw != nil {
		col, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a column name", keyMatchColumn)
		}
		rule.MatchColumn = col
	}
	if raw, ok := obj.get(keyMatchValue); ok {
		rule.MatchValue, err = scalar(raw, keyMatchValue)
		if err != nil {
			return nil, err
		}
	}
	return rule, nil
}

func scalar(x any, field string) (domain.Value, error) {
	v, ok := domain.ValueOf(x)
	if !ok {
		return domain.Value{}, fmt.Errorf("%s must be a scalar, got %T", field, x)
	}
	return v, nil
}
