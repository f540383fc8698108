package filters

// Merge combines init-time and runtime filters. When only one side is set
// it is returned as is. Otherwise:
//
//   - two comparisons on the same field: runtime wins; on different
//     fields they are ANDed.
//   - an AND group and a comparison: the group keeps its conditions and
//     gains the comparison. A runtime comparison replaces init conditions
//     on the same field; an init comparison is dropped when the runtime
//     group already constrains its field.
//   - two groups with the same operator: their conditions are
//     concatenated under that operator.
//   - anything else: runtime wins.
func Merge(init, runtime Filter) Filter {
	switch {
	case init == nil:
		return runtime
	case runtime == nil:
		return init
	}

	initCmp, initIsCmp := asComparison(init)
	runtimeCmp, runtimeIsCmp := asComparison(runtime)
	initLogical, initIsLogical := asLogical(init)
	runtimeLogical, runtimeIsLogical := asLogical(runtime)

	switch {
	case initIsCmp && runtimeIsCmp:
		if initCmp.Field == runtimeCmp.Field {
			return runtime
		}
		return AllOf(init, runtime)

	case initIsCmp && runtimeIsLogical:
		if runtimeLogical.Operator != And {
			return runtime
		}
		if constrains(runtimeLogical.Conditions, initCmp.Field) {
			return Logical{Operator: And, Conditions: concat(runtimeLogical.Conditions)}
		}
		return Logical{Operator: And, Conditions: concat(runtimeLogical.Conditions, init)}

	case initIsLogical && runtimeIsCmp:
		if initLogical.Operator != And {
			return runtime
		}
		kept := make([]Filter, 0, len(initLogical.Conditions)+1)
		for _, c := range initLogical.Conditions {
			if cmp, ok := asComparison(c); ok && cmp.Field == runtimeCmp.Field {
				continue
			}
			kept = append(kept, c)
		}
		return Logical{Operator: And, Conditions: append(kept, runtime)}

	case initIsLogical && runtimeIsLogical:
		if initLogical.Operator != runtimeLogical.Operator {
			return runtime
		}
		return Logical{Operator: initLogical.Operator, Conditions: concat(initLogical.Conditions, runtimeLogical.Conditions...)}

	default:
		return runtime
	}
}

// constrains reports whether a top-level comparison in conditions targets
// field.
func constrains(conditions []Filter, field string) bool {
	for _, c := range conditions {
		if cmp, ok := asComparison(c); ok && cmp.Field == field {
			return true
		}
	}
	return false
}

func asComparison(f Filter) (Comparison, bool) {
	switch v := f.(type) {
	case Comparison:
		return v, true
	case *Comparison:
		return *v, true
	default:
		return Comparison{}, false
	}
}

func asLogical(f Filter) (Logical, bool) {
	switch v := f.(type) {
	case Logical:
		return v, true
	case *Logical:
		return *v, true
	default:
		return Logical{}, false
	}
}

func concat(base []Filter, more ...Filter) []Filter {
	out := make([]Filter, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
