package filters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseJSON(t *testing.T) {
	f, err := ParseJSON([]byte(`{
		"operator": "and",
		"conditions": [
			{"field": "meta.type", "operator": "==", "value": "article"},
			{"operator": "OR", "conditions": [
				{"field": "meta.year", "operator": ">=", "value": 2020},
				{"field": "meta.rating", "operator": "<", "value": 3.5},
				{"field": "meta.lang", "operator": "NOT IN", "value": ["fr", "it"]}
			]}
		]
	}`))
	require.NoError(t, err)

	want := AllOf(
		Eq("meta.type", "article"),
		AnyOf(
			Gte("meta.year", int64(2020)),
			Lt("meta.rating", 3.5),
			Comparison{Field: "meta.lang", Operator: OpNotIn, Value: []any{"fr", "it"}},
		),
	)
	assert.Equal(t, want, f)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing operator and conditions", `{"field": "meta.a", "value": 1}`, ErrInvalidFilter},
		{"unsupported comparison", `{"field": "meta.a", "operator": "like", "value": "x"}`, ErrUnsupportedOperator},
		{"unsupported logical", `{"operator": "XOR", "conditions": []}`, ErrUnsupportedOperator},
		{"nested unsupported", `{"operator": "AND", "conditions": [{"field": "a", "operator": "~", "value": 1}]}`, ErrUnsupportedOperator},
		{"in without list", `{"field": "meta.a", "operator": "in", "value": "x"}`, ErrInvalidFilter},
		{"missing value", `{"field": "meta.a", "operator": "=="}`, ErrInvalidFilter},
		{"conditions not a list", `{"operator": "AND", "conditions": {"field": "a"}}`, ErrInvalidFilter},
		{"condition not a dict", `{"operator": "AND", "conditions": ["a"]}`, ErrInvalidFilter},
		{"not json", `{"operator":`, ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "{}", "  "} {
		f, err := ParseJSON([]byte(in))
		require.NoError(t, err, in)
		assert.Nil(t, f, in)
	}
}

func TestUnsupportedOperatorNamesOperator(t *testing.T) {
	_, err := NewComparison("meta.a", "startswith", "x")
	require.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), "startswith")

	err = Comparison{Field: "a", Operator: "=~"}.Validate()
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	err = AllOf(Eq("a", 1), Comparison{Field: "b", Operator: "??", Value: 1}).Validate()
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestInAcceptsTypedSlices(t *testing.T) {
	c, err := NewComparison("meta.n", "in", []int{1, 2})
	require.NoError(t, err)

	values, ok := ListValues(c.Value)
	require.True(t, ok)
	assert.Equal(t, []any{1, 2}, values)

	assert.NoError(t, In("meta.n").Validate())
	_, ok = ListValues("x")
	assert.False(t, ok)
}

func TestToMapRoundTrip(t *testing.T) {
	f := NoneOf(Eq("meta.a", "x"), In("id", "1", "2"))
	m := ToMap(f)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	back, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestExpressionYAML(t *testing.T) {
	type holder struct {
		Filters Expression `yaml:"filters,omitempty"`
		TopK    int        `yaml:"top_k"`
	}

	var h holder
	err := yaml.Unmarshal([]byte(`
filters:
  operator: OR
  conditions:
    - field: meta.year
      operator: ">"
      value: 2000
    - field: meta.tags
      operator: in
      value: [a, b]
top_k: 3
`), &h)
	require.NoError(t, err)
	assert.Equal(t, 3, h.TopK)
	assert.Equal(t, AnyOf(Gt("meta.year", 2000), Comparison{Field: "meta.tags", Operator: OpIn, Value: []any{"a", "b"}}), h.Filters.Filter)

	out, err := yaml.Marshal(holder{TopK: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "filters")

	err = yaml.Unmarshal([]byte("filters:\n  field: a\n  operator: like\n  value: 1\n"), &h)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestExpressionJSON(t *testing.T) {
	var e Expression
	require.NoError(t, json.Unmarshal([]byte(`{"field":"id","operator":"==","value":"doc1"}`), &e))
	assert.Equal(t, Eq("id", "doc1"), e.Filter)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"id","operator":"==","value":"doc1"}`, string(out))

	out, err = json.Marshal(Expression{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestMerge(t *testing.T) {
	a := Eq("meta.a", 1)
	b := Eq("meta.b", 2)
	c := Eq("meta.c", 3)
	year2020 := Eq("meta.year", 2020)
	year2021 := Eq("meta.year", 2021)

	tests := []struct {
		name    string
		init    Filter
		runtime Filter
		want    Filter
	}{
		{"both nil", nil, nil, nil},
		{"init only", a, nil, a},
		{"runtime only", nil, b, b},
		{"different fields", a, b, AllOf(a, b)},
		{"same field runtime wins", year2020, year2021, year2021},
		{"and group gains runtime comparison", AllOf(a, b), c, AllOf(a, b, c)},
		{"runtime comparison replaces same field", AllOf(a, year2020), year2021, AllOf(a, year2021)},
		{"init comparison joins runtime and", a, AllOf(b, c), AllOf(b, c, a)},
		{"init comparison dropped when field constrained", year2020, AllOf(b, year2021), AllOf(b, year2021)},
		{"and with and", AllOf(a), AllOf(b, c), AllOf(a, b, c)},
		{"or with or", AnyOf(a), AnyOf(b, c), AnyOf(a, b, c)},
		{"mismatched groups runtime wins", AnyOf(a, b), AllOf(c), AllOf(c)},
		{"or group with comparison runtime wins", AnyOf(a, b), c, c},
		{"comparison with or group runtime wins", a, AnyOf(b, c), AnyOf(b, c)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.init, tt.runtime))
		})
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	init := AllOf(Eq("meta.a", 1), Eq("meta.year", 2020))
	runtime := AllOf(Eq("meta.b", 2))

	_ = Merge(init, Eq("meta.year", 2021))
	_ = Merge(Eq("meta.c", 3), runtime)

	assert.Equal(t, AllOf(Eq("meta.a", 1), Eq("meta.year", 2020)), init)
	assert.Equal(t, AllOf(Eq("meta.b", 2)), runtime)
}
