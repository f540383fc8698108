package retriever

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/docstore/v1/filters"
)

// FilterPolicy decides how filters given at run time combine with the
// filters a retriever was built with.
type FilterPolicy string

const (
	// FilterPolicyReplace uses the runtime filters when given, otherwise the
	// init filters.
	FilterPolicyReplace FilterPolicy = "replace"
	// FilterPolicyMerge combines init and runtime filters with filters.Merge.
	FilterPolicyMerge FilterPolicy = "merge"
)

// ParseFilterPolicy accepts "replace" and "merge" in any case. The empty
// string is FilterPolicyReplace.
func ParseFilterPolicy(s string) (FilterPolicy, error) {
	switch p := FilterPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FilterPolicyReplace, nil
	case FilterPolicyReplace, FilterPolicyMerge:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilterPolicy, s)
	}
}

func (p FilterPolicy) apply(init, runtime filters.Filter) filters.Filter {
	if p == FilterPolicyMerge {
		return filters.Merge(init, runtime)
	}
	if runtime != nil {
		return runtime
	}
	return init
}
