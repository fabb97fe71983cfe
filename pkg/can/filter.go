// Copyright 2025 Robert Bosch GmbH
//
// SPDX-License-Identifier: Apache-2.0

package can

import "fmt"

// FilterRule is a single acceptance filter. A frame passes when
// frame.ID & Mask == ID & Mask and the identifier width matches the
// Extended flag. An empty rule set means accept-all.
type FilterRule struct {
	ID       uint32 `yaml:"id"`
	Mask     uint32 `yaml:"mask"`
	Extended bool   `yaml:"extended"`
}

// Matches reports whether the frame passes this rule.
func (r FilterRule) Matches(f Frame) bool {
	if r.Extended != f.Extended() {
		return false
	}
	return f.ID&r.Mask == r.ID&r.Mask
}

// MatchAny reports whether the frame passes at least one rule. An
// empty rule set accepts everything.
func MatchAny(rules []FilterRule, f Frame) bool {
	if len(rules) == 0 {
		return true
	}
	for _, r := range rules {
		if r.Matches(f) {
			return true
		}
	}
	return false
}

func (r FilterRule) String() string {
	return fmt.Sprintf("ID=0x%X, Mask=0x%X, Extended=%v", r.ID, r.Mask, r.Extended)
}
