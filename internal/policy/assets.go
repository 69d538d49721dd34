package policy

import _ "embed"

//go:embed assets/default.json
var defaultBundle []byte

// DefaultBundle returns the shipped invariants + role playbooks bundle,
// read once at startup and loaded into memory (spec.md §9 "Dynamic
// policy/role content").
func DefaultBundle() []byte {
	return defaultBundle
}
