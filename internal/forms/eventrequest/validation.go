package eventrequest

import (
	_ "embed"

	"campus-forms/internal/common/validation"
)

const FormName = "eventrequest"

const (
	FieldDepartment     = "dep"
	FieldSubject        = "subject"
	FieldEvent          = "event"
	FieldVenue          = "venue"
	FieldDate           = "evedate"
	FieldDetail         = "detail"
	FieldAdditionalInfo = "additionalinfo"
)

//go:embed schema.yaml
var schemaYAML []byte

// GetSchema parses the embedded event request rule table.
func GetSchema() (*validation.Schema, error) {
	return validation.ParseSchemaYAML(schemaYAML)
}
