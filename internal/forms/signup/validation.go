package signup

import (
	"campus-forms/internal/common/validation"
	"campus-forms/internal/forms/derive"
)

const FormName = "signup"

const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldUsername   = "username"
	FieldRollNumber = "rollNumber"
	FieldDepartment = "department"
	FieldEmail      = "email"
	FieldPassword   = "password"
)

// GetSchema returns the sign-up rule table for the configured department set
// and mail domain.
func GetSchema(cfg *Config) (*validation.Schema, error) {
	return validation.NewSchema(FormName,
		nameField(FieldFirstName, "First Name"),
		nameField(FieldLastName, "Last Name"),
		validation.Field{
			Name:  FieldUsername,
			Label: "Username",
			Rules: []validation.Rule{
				validation.Required("Username is required"),
				validation.Pattern(validation.AlphanumericPattern, "Alphabets and digits only"),
				validation.MinLength(4, "Username must be at least 4 characters"),
			},
		},
		validation.Field{
			Name:  FieldRollNumber,
			Label: "Roll Number",
			// The pattern implies ten characters; both rules are kept so the
			// pattern message wins when both fail.
			Rules: []validation.Rule{
				validation.Required("Roll number is required"),
				validation.Pattern(validation.RollNumberPattern, "Invalid roll number format"),
				validation.ExactLength(10, "Roll number must be exactly 10 characters"),
			},
		},
		validation.Field{
			Name:  FieldDepartment,
			Label: "Department",
			Rules: []validation.Rule{
				validation.Required("Department is required"),
				validation.OneOf(cfg.Departments, "Please select a valid department"),
			},
		},
		validation.Field{
			Name:     FieldEmail,
			Label:    "Email",
			ReadOnly: true,
			Rules: []validation.Rule{
				validation.Pattern(validation.CollegeEmailPattern(cfg.EmailDomain), validation.CollegeEmailMessage(cfg.EmailDomain)),
			},
		},
		validation.Field{
			Name:      FieldPassword,
			Label:     "Password",
			Sensitive: true,
			Rules: []validation.Rule{
				validation.Required("Password is required"),
				validation.MinLength(6, "Password must be between 6 and 12 characters"),
				validation.MaxLength(12, "Password must be between 6 and 12 characters"),
			},
		},
	)
}

func nameField(name, label string) validation.Field {
	return validation.Field{
		Name:  name,
		Label: label,
		Rules: []validation.Rule{
			validation.Required(label + " is required"),
			validation.Pattern(validation.AlphabeticPattern, "Only alphabets are allowed"),
			validation.MinLength(4, label+" must be at least 4 characters"),
		},
	}
}

// GetDerivations returns the roll number to email derivation.
func GetDerivations(cfg *Config) (*derive.Set, error) {
	policy, err := derive.ParseStalePolicy(cfg.DerivedEmailPolicy)
	if err != nil {
		return nil, err
	}
	return derive.NewSet(policy, derive.RollNumberEmail(FieldRollNumber, FieldEmail, cfg.EmailDomain))
}
