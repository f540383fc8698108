package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/utils/tests"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/filters"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func newDryRunStore(t *testing.T, model any, opts ...Option) *Store {
	t.Helper()
	s, err := New(GormConn(newDryRunDB(t)), model, opts...)
	require.NoError(t, err)
	return s
}

func render(t *testing.T, s *Store, expr clause.Expression) (string, []interface{}) {
	t.Helper()
	stmt := &gorm.Statement{DB: s.conn.DB(), Clauses: map[string]clause.Clause{}}
	expr.Build(stmt)
	return stmt.SQL.String(), stmt.Vars
}

func TestTranslateFilter(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   filters.Filter
		wantSQL  string
		wantVars []interface{}
	}{
		{
			name:     "equal on column",
			filter:   filters.Eq("content", "hello"),
			wantSQL:  "`content` = ?",
			wantVars: []interface{}{"hello"},
		},
		{
			name:     "not equal on column",
			filter:   filters.Ne("id", "a"),
			wantSQL:  "`id` IS DISTINCT FROM ?",
			wantVars: []interface{}{"a"},
		},
		{
			name:     "equal on meta key",
			filter:   filters.Eq("meta.lang", "en"),
			wantSQL:  "jsonb_extract_path(`meta`, ?) = ?::jsonb",
			wantVars: []interface{}{"lang", `"en"`},
		},
		{
			name:     "double underscore path",
			filter:   filters.Eq("meta__author__name", "ann"),
			wantSQL:  "jsonb_extract_path(`meta`, ?, ?) = ?::jsonb",
			wantVars: []interface{}{"author", "name", `"ann"`},
		},
		{
			name:     "equal nil on meta key",
			filter:   filters.Eq("meta.missing", nil),
			wantSQL:  "(jsonb_extract_path(`meta`, ?) IS NULL OR jsonb_extract_path(`meta`, ?) = 'null'::jsonb)",
			wantVars: []interface{}{"missing", "missing"},
		},
		{
			name:     "not equal on meta key",
			filter:   filters.Ne("meta.lang", "en"),
			wantSQL:  "jsonb_extract_path(`meta`, ?) IS DISTINCT FROM ?::jsonb",
			wantVars: []interface{}{"lang", `"en"`},
		},
		{
			name:     "number range on meta key",
			filter:   filters.Gt("meta.year", 2000),
			wantSQL:  "CASE WHEN jsonb_typeof(jsonb_extract_path(`meta`, ?)) = 'number' THEN (jsonb_extract_path_text(`meta`, ?))::numeric END > ?",
			wantVars: []interface{}{"year", "year", 2000},
		},
		{
			name:     "date range on meta key",
			filter:   filters.Gte("meta.date", "2024-01-01"),
			wantSQL:  "(jsonb_extract_path_text(`meta`, ?))::timestamptz >= ?::timestamptz",
			wantVars: []interface{}{"date", date},
		},
		{
			name:     "range with nil never matches",
			filter:   filters.Lt("meta.year", nil),
			wantSQL:  "FALSE",
		},
		{
			name:     "in on meta key",
			filter:   filters.In("meta.tag", "a", "b"),
			wantSQL:  "jsonb_extract_path(`meta`, ?) IN (?::jsonb, ?::jsonb)",
			wantVars: []interface{}{"tag", `"a"`, `"b"`},
		},
		{
			name:     "not in on column includes nulls",
			filter:   filters.NotIn("content", "x"),
			wantSQL:  "(`content` IS NULL OR `content` NOT IN (?))",
			wantVars: []interface{}{"x"},
		},
		{
			name:    "empty in",
			filter:  filters.In("meta.tag"),
			wantSQL: "FALSE",
		},
		{
			name:    "empty not in",
			filter:  filters.NotIn("meta.tag"),
			wantSQL: "TRUE",
		},
		{
			name: "and group",
			filter: filters.AllOf(
				filters.Eq("content", "a"),
				filters.Eq("id", "b"),
			),
			wantSQL:  "(`content` = ? AND `id` = ?)",
			wantVars: []interface{}{"a", "b"},
		},
		{
			name: "or with single condition",
			filter: filters.AnyOf(
				filters.Eq("content", "a"),
			),
			wantSQL:  "`content` = ?",
			wantVars: []interface{}{"a"},
		},
		{
			name: "not negates the conjunction",
			filter: filters.NoneOf(
				filters.Eq("content", "a"),
				filters.Eq("id", "b"),
			),
			wantSQL:  "NOT ((`content` = ? AND `id` = ?))",
			wantVars: []interface{}{"a", "b"},
		},
		{
			name: "nested or inside and",
			filter: filters.AllOf(
				filters.Eq("meta.type", "article"),
				filters.AnyOf(
					filters.Eq("content", "a"),
					filters.Eq("content", "b"),
				),
			),
			wantSQL:  "(jsonb_extract_path(`meta`, ?) = ?::jsonb AND (`content` = ? OR `content` = ?))",
			wantVars: []interface{}{"type", `"article"`, "a", "b"},
		},
		{
			name:     "empty or",
			filter:   filters.AnyOf(),
			wantSQL:  "FALSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := TranslateFilter(s.mapping, tt.filter)
			require.NoError(t, err)

			sql, vars := render(t, s, expr)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantVars == nil {
				assert.Empty(t, vars)
			} else {
				assert.Equal(t, tt.wantVars, vars)
			}
		})
	}
}

func TestTranslateFilter_Errors(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	tests := []struct {
		name   string
		filter filters.Filter
		want   error
	}{
		{"unknown field", filters.Eq("title", "x"), filters.ErrInvalidFilter},
		{"path on plain column", filters.Eq("content.x", "x"), filters.ErrInvalidFilter},
		{"string range", filters.Gt("meta.name", "abc"), filters.ErrInvalidFilter},
		{"bool range", filters.Lt("meta.flag", true), filters.ErrInvalidFilter},
		{"unsupported operator", filters.Comparison{Field: "meta.a", Operator: "like", Value: "x"}, filters.ErrUnsupportedOperator},
		{"unsupported logical", filters.Logical{Operator: "XOR"}, filters.ErrUnsupportedOperator},
		{"in without list", filters.Comparison{Field: "meta.a", Operator: filters.OpIn, Value: "x"}, filters.ErrInvalidFilter},
		{"list equality on plain column", filters.Eq("content", []any{"a", "b"}), filters.ErrInvalidFilter},
		{"list inequality on plain column", filters.Ne("content", []string{"a", "b"}), filters.ErrInvalidFilter},
		{"nested error", filters.AllOf(filters.Eq("content", "a"), filters.Eq("nope", 1)), filters.ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TranslateFilter(s.mapping, tt.filter)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTranslateFilter_Nil(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	expr, err := TranslateFilter(s.mapping, nil)
	require.NoError(t, err)
	assert.Nil(t, expr)
}

func TestTranslateFilter_RenamedMeta(t *testing.T) {
	s := newDryRunStore(t, &renamedModel{}, WithFieldMap(FieldMap{ID: "key", Content: "body", Meta: "attributes"}))

	expr, err := TranslateFilter(s.mapping, filters.AllOf(
		filters.Eq("meta.lang", "de"),
		filters.Eq("content", "x"),
		filters.Eq("id", "k"),
	))
	require.NoError(t, err)

	sql, vars := render(t, s, expr)
	assert.Equal(t, "(jsonb_extract_path(`attributes`, ?) = ?::jsonb AND `body` = ? AND `key` = ?)", sql)
	assert.Equal(t, []interface{}{"lang", `"de"`, "x", "k"}, vars)
}
