package signin

import "campus-forms/internal/common/validation"

const FormName = "signin"

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// GetSchema returns the sign-in rule table. The copy is lower-case on this
// form.
func GetSchema() *validation.Schema {
	return validation.MustSchema(FormName,
		validation.Field{
			Name:  FieldUsername,
			Label: "Username",
			Rules: []validation.Rule{
				validation.Required("Username is required"),
				validation.Pattern(validation.AlphanumericPattern, "alphabets and digits only"),
				validation.MinLength(4, "username must be at least 4 characters"),
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
