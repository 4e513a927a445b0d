package state

import "campus-forms/internal/common/errors"

// FieldState is the observable state of one field.
type FieldState struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Valid    bool   `json:"valid"`
	Message  string `json:"message,omitempty"`
	Code     string `json:"code,omitempty"`
	Required bool   `json:"required"`
	ReadOnly bool   `json:"readOnly,omitempty"`
	// Touched is set once the field received a change event or a derived value.
	Touched   bool `json:"touched"`
	Sensitive bool `json:"-"`
}

// Snapshot is an immutable copy of a controller's state. Holders may keep it
// across later mutations of the controller.
type Snapshot struct {
	Form            string                `json:"form"`
	Fields          map[string]FieldState `json:"fields"`
	Order           []string              `json:"order"`
	Valid           bool                  `json:"valid"`
	Submitting      bool                  `json:"submitting"`
	SubmitError     string                `json:"submitError,omitempty"`
	SubmitErrorCode string                `json:"submitErrorCode,omitempty"`
	Version         uint64                `json:"version"`
}

// Values returns the raw field values keyed by name.
func (s Snapshot) Values() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for name, f := range s.Fields {
		out[name] = f.Value
	}
	return out
}

// Value returns one field's value, empty when unknown.
func (s Snapshot) Value(name string) string {
	return s.Fields[name].Value
}

// FieldErrors returns a FIELD_VALIDATION_FAILED error for each invalid field
// with a visible message, in field order.
func (s Snapshot) FieldErrors() []*errors.StandardError {
	var out []*errors.StandardError
	for _, name := range s.Order {
		f := s.Fields[name]
		if f.Valid || f.Message == "" {
			continue
		}
		out = append(out, errors.NewFieldValidationError(name, f.Message).WithMetadata("rule", f.Code))
	}
	return out
}

// Errors returns the visible messages of invalid fields keyed by name.
func (s Snapshot) Errors() map[string]string {
	out := make(map[string]string)
	for _, fe := range s.FieldErrors() {
		out[fe.Metadata["field"].(string)] = fe.Message
	}
	return out
}

// Submittable mirrors Controller.IsSubmittable at the time of the snapshot.
func (s Snapshot) Submittable() bool {
	return s.Valid && !s.Submitting
}

// Sensitive lists the fields whose values must not be logged.
func (s Snapshot) Sensitive() map[string]bool {
	out := make(map[string]bool)
	for name, f := range s.Fields {
		if f.Sensitive {
			out[name] = true
		}
	}
	return out
}
