package document

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides what happens when a written document's ID
// already exists.
type DuplicatePolicy string

const (
	// PolicyNone behaves like PolicyFail.
	PolicyNone      DuplicatePolicy = "none"
	PolicyFail      DuplicatePolicy = "fail"
	PolicySkip      DuplicatePolicy = "skip"
	PolicyOverwrite DuplicatePolicy = "overwrite"
)

// ParseDuplicatePolicy accepts the policy names case-insensitively. The
// empty string is PolicyNone.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyNone, nil
	case PolicyNone, PolicyFail, PolicySkip, PolicyOverwrite:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Effective resolves PolicyNone and the zero value to PolicyFail.
func (p DuplicatePolicy) Effective() DuplicatePolicy {
	if p == "" || p == PolicyNone {
		return PolicyFail
	}
	return p
}
