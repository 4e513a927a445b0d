package validation

import (
	"fmt"
	"regexp"
)

// RuleKind names one declarative constraint.
type RuleKind string

const (
	KindRequired    RuleKind = "required"
	KindPattern     RuleKind = "pattern"
	KindMinLength   RuleKind = "minLength"
	KindMaxLength   RuleKind = "maxLength"
	KindExactLength RuleKind = "exactLength"
	KindOneOf       RuleKind = "oneOf"
)

// Rule is a pure predicate over a field value. Length rules count runes.
type Rule struct {
	Kind    RuleKind `yaml:"kind" json:"kind"`
	Pattern string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Length  int      `yaml:"length,omitempty" json:"length,omitempty"`
	Values  []string `yaml:"values,omitempty" json:"values,omitempty"`
	Message string   `yaml:"message" json:"message"`

	re *regexp.Regexp
}

func Required(message string) Rule {
	return Rule{Kind: KindRequired, Message: message}
}

func Pattern(expr, message string) Rule {
	return Rule{Kind: KindPattern, Pattern: expr, Message: message, re: regexp.MustCompile(expr)}
}

func MinLength(n int, message string) Rule {
	return Rule{Kind: KindMinLength, Length: n, Message: message}
}

func MaxLength(n int, message string) Rule {
	return Rule{Kind: KindMaxLength, Length: n, Message: message}
}

func ExactLength(n int, message string) Rule {
	return Rule{Kind: KindExactLength, Length: n, Message: message}
}

// OneOf constrains the value to a fixed set. The set is copied.
func OneOf(values []string, message string) Rule {
	cp := make([]string, len(values))
	copy(cp, values)
	return Rule{Kind: KindOneOf, Values: cp, Message: message}
}

// Check reports whether value satisfies the rule.
func (r Rule) Check(value string) bool {
	switch r.Kind {
	case KindRequired:
		return value != ""
	case KindPattern:
		re := r.re
		if re == nil {
			re = regexp.MustCompile(r.Pattern)
		}
		return re.MatchString(value)
	case KindMinLength:
		return runeLen(value) >= r.Length
	case KindMaxLength:
		return runeLen(value) <= r.Length
	case KindExactLength:
		return runeLen(value) == r.Length
	case KindOneOf:
		for _, v := range r.Values {
			if v == value {
				return true
			}
		}
		return false
	}
	return false
}

func (r *Rule) compile() error {
	switch r.Kind {
	case KindRequired, KindOneOf:
	case KindPattern:
		if r.re != nil {
			return nil
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", r.Pattern, err)
		}
		r.re = re
	case KindMinLength, KindMaxLength, KindExactLength:
		if r.Length < 0 {
			return fmt.Errorf("%s: length must not be negative", r.Kind)
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	return nil
}
