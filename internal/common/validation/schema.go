package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Field describes one named form field and the ordered rules governing it.
type Field struct {
	Name      string `yaml:"name" json:"name"`
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	Rules     []Rule `yaml:"rules,omitempty" json:"rules,omitempty"`
	ReadOnly  bool   `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	Sensitive bool   `yaml:"sensitive,omitempty" json:"sensitive,omitempty"`
}

// Required reports whether the field carries a required rule.
func (f Field) Required() bool {
	for _, r := range f.Rules {
		if r.Kind == KindRequired {
			return true
		}
	}
	return false
}

// Result is the outcome of validating a single field value.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is an ordered table of fields for one form variant.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from field descriptors. Field order is kept and
// drives the order of ValidateAll errors and JSON schema properties.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field name is required", name)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, f.Name)
		}
		for i := range f.Rules {
			if err := f.Rules[i].compile(); err != nil {
				return nil, fmt.Errorf("schema %s: field %s: %w", name, f.Name, err)
			}
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is NewSchema for statically declared tables.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the field table in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Validate runs the named field's rules against value. Rules are evaluated
// in declaration order and the first failing rule's message is reported.
// An empty value of an optional field is valid without running its rules.
func (s *Schema) Validate(name, value string) Result {
	f, ok := s.Field(name)
	if !ok {
		return Result{Valid: false, Message: "field not allowed in schema", Code: "extra_field"}
	}
	return validateField(f, value)
}

func validateField(f Field, value string) Result {
	if value == "" && !f.Required() {
		return Result{Valid: true}
	}
	for _, r := range f.Rules {
		if !r.Check(value) {
			return Result{Valid: false, Message: r.Message, Code: string(r.Kind)}
		}
	}
	return Result{Valid: true}
}

// ValidateAll validates every schema field against values. Missing keys are
// treated as empty strings; keys outside the schema are rejected, sorted by
// name after the field errors.
func (s *Schema) ValidateAll(values map[string]string) *ValidationResult {
	errors := []ValidationError{}

	for _, f := range s.fields {
		res := validateField(f, values[f.Name])
		if !res.Valid {
			errors = append(errors, ValidationError{
				Field:   f.Name,
				Message: res.Message,
				Code:    res.Code,
			})
		}
	}

	var extra []string
	for name := range values {
		if _, ok := s.index[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		errors = append(errors, ValidationError{
			Field:   name,
			Message: "field not allowed in schema",
			Code:    "extra_field",
		})
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
