// Package filters implements the metadata filter grammar used by the
// document store and retrievers.
//
// A filter is a tree of comparisons and logical groups. It can be built in
// code:
//
//	f := filters.AllOf(
//		filters.Eq("meta.genre", "news"),
//		filters.Gte("meta.year", 2020),
//	)
//
// or parsed from its dict/JSON form:
//
//	f, err := filters.ParseJSON([]byte(`{
//		"operator": "OR",
//		"conditions": [
//			{"field": "meta.lang", "operator": "in", "value": ["en", "de"]},
//			{"field": "content", "operator": "!=", "value": null}
//		]
//	}`))
//
// Operators are checked when a filter is parsed or validated, so an
// unsupported operator fails before any query runs.
package filters
