// Package derive computes dependent field values from a source field.
package derive

import (
	"fmt"

	"campus-forms/internal/common/validation"
)

// StalePolicy decides what happens to a derived value once its source stops
// satisfying the predicate.
type StalePolicy string

const (
	// Retain keeps the last computed value.
	Retain StalePolicy = "retain"
	// Clear resets the target to the empty string.
	Clear StalePolicy = "clear"
)

// ParseStalePolicy maps a config string to a policy. Empty means Retain.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch StalePolicy(s) {
	case "", Retain:
		return Retain, nil
	case Clear:
		return Clear, nil
	default:
		return "", fmt.Errorf("unknown derived value policy %q", s)
	}
}

// Rule maps Source to Target. Transform runs only when Predicate holds.
type Rule struct {
	Source    string
	Target    string
	Predicate func(string) bool
	Transform func(string) string
}

// Outcome is the effect of applying a rule to a source value.
type Outcome struct {
	Target  string
	Value   string
	Changed bool
}

// Apply evaluates the rule for source against the target's current value.
func (r Rule) Apply(source, current string, policy StalePolicy) Outcome {
	out := Outcome{Target: r.Target, Value: current}
	if r.Predicate(source) {
		out.Value = r.Transform(source)
	} else if policy == Clear {
		out.Value = ""
	}
	out.Changed = out.Value != current
	return out
}

// Set holds the derivation rules of one form, indexed by source field.
type Set struct {
	rules  map[string][]Rule
	policy StalePolicy
}

func NewSet(policy StalePolicy, rules ...Rule) (*Set, error) {
	if policy == "" {
		policy = Retain
	}
	if policy != Retain && policy != Clear {
		return nil, fmt.Errorf("unknown derived value policy %q", policy)
	}
	s := &Set{rules: make(map[string][]Rule), policy: policy}
	for _, r := range rules {
		if r.Source == "" || r.Target == "" {
			return nil, fmt.Errorf("derivation rule requires source and target")
		}
		if r.Source == r.Target {
			return nil, fmt.Errorf("derivation rule %s derives itself", r.Source)
		}
		if r.Predicate == nil || r.Transform == nil {
			return nil, fmt.Errorf("derivation rule %s -> %s requires predicate and transform", r.Source, r.Target)
		}
		s.rules[r.Source] = append(s.rules[r.Source], r)
	}
	return s, nil
}

func (s *Set) Policy() StalePolicy {
	if s == nil {
		return Retain
	}
	return s.policy
}

// Targets lists every derived field name.
func (s *Set) Targets() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, rs := range s.rules {
		for _, r := range rs {
			out = append(out, r.Target)
		}
	}
	return out
}

// Apply runs every rule whose source is field. current looks up a target's
// present value.
func (s *Set) Apply(field, value string, current func(string) string) []Outcome {
	if s == nil {
		return nil
	}
	rs := s.rules[field]
	if len(rs) == 0 {
		return nil
	}
	out := make([]Outcome, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Apply(value, current(r.Target), s.policy))
	}
	return out
}

// RollNumberEmail derives the college email from a valid roll number.
func RollNumberEmail(source, target, domain string) Rule {
	if domain == "" {
		domain = validation.DefaultEmailDomain
	}
	return Rule{
		Source:    source,
		Target:    target,
		Predicate: validation.IsRollNumber,
		Transform: func(roll string) string { return roll + "@" + domain },
	}
}
