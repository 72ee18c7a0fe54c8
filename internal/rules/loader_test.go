package rules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sheetclean/internal/errors"
	"sheetclean/pkg/contracts/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	rs, err := Load(filepath.Join(t.TempDir(), "opravy.json"))
	require.NoError(t, err)
	assert.Zero(t, rs.Len())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "opravy.json", `[
		{"target_column": "Market_brand", "replace_map": {"Zeta": "Z", "Alpha": "A", "Mid": 3}},
		{"target_columns": ["By", "Location"], "wrong_value": "Prag", "correct_value": "Praha"},
		{"target_column": "Location", "wrong_value": 1, "correct_value": null,
		 "match_column": "Serial_Number", "match_value": "SN-1", "note": "ignored"}
	]`)

	rs, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	rules := rs.Rules()

	m, ok := rules[0].(*domain.MappedReplacement)
	require.True(t, ok)
	assert.Equal(t, []string{"Market_brand"}, m.TargetColumns)
	assert.Equal(t, []domain.ReplacePair{
		{Wrong: domain.Text("Zeta"), Correct: domain.Text("Z")},
		{Wrong: domain.Text("Alpha"), Correct: domain.Text("A")},
		{Wrong: domain.Text("Mid"), Correct: domain.Number(3)},
	}, m.Pairs, "pairs keep document order")

	v, ok := rules[1].(*domain.ValueReplacement)
	require.True(t, ok)
	assert.Equal(t, []string{"By", "Location"}, v.TargetColumns)
	assert.Equal(t, domain.Text("Prag"), v.Wrong)
	assert.False(t, v.Conditional())

	c, ok := rules[2].(*domain.ValueReplacement)
	require.True(t, ok)
	assert.Equal(t, domain.Number(1), c.Wrong)
	assert.True(t, c.Correct.IsNull())
	assert.True(t, c.Conditional())
	assert.Equal(t, "Serial_Number", c.MatchColumn)
	assert.Equal(t, domain.Text("SN-1"), c.MatchValue)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
- target_column: Market_brand
  replace_map:
    Zeta: Z
    Alpha: A
    10: ten
- target_columns: [Location]
  wrong_value: Prag
  correct_value: Praha
  match_column: By
  match_value: John
`)

	rs, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	m := rs.Rules()[0].(*domain.MappedReplacement)
	assert.Equal(t, []domain.ReplacePair{
		{Wrong: domain.Text("Zeta"), Correct: domain.Text("Z")},
		{Wrong: domain.Text("Alpha"), Correct: domain.Text("A")},
		{Wrong: domain.Number(10), Correct: domain.Text("ten")},
	}, m.Pairs)

	v := rs.Rules()[1].(*domain.ValueReplacement)
	assert.True(t, v.Conditional())
	assert.Equal(t, "By", v.MatchColumn)
}

func TestParse_DuplicateMapKeyOverridesInPlace(t *testing.T) {
	rs, err := Parse([]byte(`[{"target_column": "t", "replace_map": {"A": "1", "B": "2", "A": "3"}}]`), FormatJSON)
	require.NoError(t, err)

	m := rs.Rules()[0].(*domain.MappedReplacement)
	assert.Equal(t, []domain.ReplacePair{
		{Wrong: domain.Text("A"), Correct: domain.Text("3")},
		{Wrong: domain.Text("B"), Correct: domain.Text("2")},
	}, m.Pairs)
}

func TestParse_HalfSpecifiedMatchIsUnconditional(t *testing.T) {
	rs, err := Parse([]byte(`[{"target_column": "t", "wrong_value": "A", "correct_value": "B", "match_column": "m"}]`), FormatJSON)
	require.NoError(t, err)
	assert.False(t, rs.Rules()[0].(*domain.ValueReplacement).Conditional())
}

func TestParse_FalsyMatchValueIsConditional(t *testing.T) {
	tests := []struct {
		name  string
		match string
		want  domain.Value
	}{
		{"empty text", `""`, domain.Text("")},
		{"zero", `0`, domain.Number(0)},
		{"false", `false`, domain.Bool(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[{"target_column": "t", "wrong_value": "A", "correct_value": "B", "match_column": "m", "match_value": ` + tt.match + `}]`
			rs, err := Parse([]byte(doc), FormatJSON)
			require.NoError(t, err)
			rule := rs.Rules()[0].(*domain.ValueReplacement)
			assert.True(t, rule.Conditional())
			assert.True(t, tt.want.Equal(rule.MatchValue))
		})
	}
}

func TestParse_EmptyTargetColumnsFallsBack(t *testing.T) {
	rs, err := Parse([]byte(`[{"target_columns": [], "target_column": "t", "wrong_value": "A", "correct_value": "B"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, rs.Rules()[0].Targets())
}

func TestParse_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `[{`},
		{"trailing data", `[] []`},
		{"not a list", `{"target_column": "t"}`},
		{"rule not a mapping", `["t"]`},
		{"no target", `[{"wrong_value": "A", "correct_value": "B"}]`},
		{"target not a string", `[{"target_column": 5, "wrong_value": "A", "correct_value": "B"}]`},
		{"empty target name", `[{"target_column": "", "wrong_value": "A", "correct_value": "B"}]`},
		{"neither shape", `[{"target_column": "t"}]`},
		{"wrong without correct", `[{"target_column": "t", "wrong_value": "A"}]`},
		{"both shapes", `[{"target_column": "t", "replace_map": {"A": "B"}, "wrong_value": "A", "correct_value": "B"}]`},
		{"map not a mapping", `[{"target_column": "t", "replace_map": ["A"]}]`},
		{"empty map", `[{"target_column": "t", "replace_map": {}}]`},
		{"composite value", `[{"target_column": "t", "wrong_value": ["A"], "correct_value": "B"}]`},
		{"match column not a string", `[{"target_column": "t", "wrong_value": "A", "correct_value": "B", "match_column": 1, "match_value": 2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Parse([]byte(tt.doc), FormatJSON)
			require.Error(t, err)
			assert.Nil(t, rs)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig), "got %v", err)
		})
	}
}

func TestLoad_ErrorNamesRuleAndPath(t *testing.T) {
	path := writeFile(t, "opravy.json", `[
		{"target_column": "t", "wrong_value": "A", "correct_value": "B"},
		{"target_column": "t"}
	]`)

	_, err := Load(path)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 1, appErr.Context["rule_index"])
	assert.Equal(t, path, appErr.Context["path"])
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("rules.YML"))
	assert.Equal(t, FormatYAML, FormatFor("a/b.yaml"))
	assert.Equal(t, FormatJSON, FormatFor("opravy.json"))
	assert.Equal(t, FormatJSON, FormatFor("opravy"))
}

func TestSummarizeAndPrint(t *testing.T) {
	rs := domain.NewRuleSet(
		&domain.MappedReplacement{TargetColumns: []string{"b"}, Pairs: []domain.ReplacePair{
			{Wrong: domain.Text("x"), Correct: domain.Text("y")},
			{Wrong: domain.Text("z"), Correct: domain.Text("y")},
		}},
		&domain.ValueReplacement{TargetColumns: []string{"a"}, Wrong: domain.Text("1"), Correct: domain.Text("2"),
			MatchColumn: "m", MatchValue: domain.Text("p")},
		&domain.ValueReplacement{TargetColumns: []string{"a", "b"}, Wrong: domain.Text("1"), Correct: domain.Text("2")},
	)

	s := Summarize(rs)
	assert.Equal(t, Summary{
		Rules:       3,
		MapRules:    1,
		ValueRules:  2,
		Conditional: 1,
		Pairs:       2,
		Columns:     []string{"a", "b", "m"},
	}, s)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, rs))
	assert.Contains(t, buf.String(), "wrong_value if m = p")
	assert.Contains(t, buf.String(), "3 rules (1 replace_map with 2 pairs, 2 wrong_value of which 1 conditional) over 3 columns")
}
