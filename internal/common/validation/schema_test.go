package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema("test",
		Field{
			Name: "username",
			Rules: []Rule{
				Required("Username is required"),
				Pattern(AlphanumericPattern, "Alphabets and digits only"),
				MinLength(4, "Username must be at least 4 characters"),
			},
		},
		Field{
			Name: "rollNumber",
			Rules: []Rule{
				Required("Roll number is required"),
				Pattern(RollNumberPattern, "Invalid roll number format"),
				ExactLength(10, "Roll number must be exactly 10 characters"),
			},
		},
		Field{
			Name: "password",
			Rules: []Rule{
				Required("Password is required"),
				MinLength(6, "Password must be between 6 and 12 characters"),
				MaxLength(12, "Password must be between 6 and 12 characters"),
			},
			Sensitive: true,
		},
		Field{
			Name:  "department",
			Rules: []Rule{Required("Department is required"), OneOf([]string{"CSE", "IT"}, "Please select a valid department")},
		},
		Field{Name: "nickname", Rules: []Rule{MinLength(3, "too short")}},
		Field{Name: "email", ReadOnly: true},
	)
	require.NoError(t, err)
	return s
}

func TestSchema_Validate(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name    string
		field   string
		value   string
		valid   bool
		message string
		code    string
	}{
		{name: "username too short", field: "username", value: "ab1", message: "Username must be at least 4 characters", code: "minLength"},
		{name: "username bad chars", field: "username", value: "ab!1", message: "Alphabets and digits only", code: "pattern"},
		{name: "username bad chars and short", field: "username", value: "a!", message: "Alphabets and digits only", code: "pattern"},
		{name: "username valid", field: "username", value: "abcd1", valid: true},
		{name: "username empty", field: "username", value: "", message: "Username is required", code: "required"},
		{name: "password too short", field: "password", value: "abc", message: "Password must be between 6 and 12 characters", code: "minLength"},
		{name: "password too long", field: "password", value: "abcdefghijklm", message: "Password must be between 6 and 12 characters", code: "maxLength"},
		{name: "password lower bound", field: "password", value: "abcdef", valid: true},
		{name: "password upper bound", field: "password", value: "abcdefghijkl", valid: true},
		{name: "roll number valid", field: "rollNumber", value: "20071A0501", valid: true},
		{name: "roll number bad branch digit", field: "rollNumber", value: "20073A0501", message: "Invalid roll number format", code: "pattern"},
		{name: "roll number too long reports pattern first", field: "rollNumber", value: "20071A05011", message: "Invalid roll number format", code: "pattern"},
		{name: "department member", field: "department", value: "CSE", valid: true},
		{name: "department not member", field: "department", value: "HR", message: "Please select a valid department", code: "oneOf"},
		{name: "optional empty skips rules", field: "nickname", value: "", valid: true},
		{name: "optional non-empty runs rules", field: "nickname", value: "ab", message: "too short", code: "minLength"},
		{name: "rule-less field", field: "email", value: "anything", valid: true},
		{name: "unknown field", field: "nope", value: "x", message: "field not allowed in schema", code: "extra_field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Validate(tt.field, tt.value)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestSchema_MessageIffInvalid(t *testing.T) {
	s := testSchema(t)
	for _, v := range []string{"", "a", "ab!1", "abcd", "abcdefghijklmnopq", "20071A0501"} {
		for _, f := range s.Fields() {
			res := s.Validate(f.Name, v)
			assert.Equal(t, !res.Valid, res.Message != "", "field=%s value=%q", f.Name, v)
		}
	}
}

func TestNewSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		errMsg string
	}{
		{name: "duplicate field", fields: []Field{{Name: "a"}, {Name: "a"}}, errMsg: "duplicate field"},
		{name: "empty name", fields: []Field{{Name: ""}}, errMsg: "field name is required"},
		{name: "bad pattern", fields: []Field{{Name: "a", Rules: []Rule{{Kind: KindPattern, Pattern: "("}}}}, errMsg: "invalid pattern"},
		{name: "unknown kind", fields: []Field{{Name: "a", Rules: []Rule{{Kind: "between"}}}}, errMsg: "unknown rule kind"},
		{name: "negative length", fields: []Field{{Name: "a", Rules: []Rule{MinLength(-1, "x")}}}, errMsg: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSchema("bad", tt.fields...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, s)
		})
	}
}

func TestSchema_ValidateAll(t *testing.T) {
	s := testSchema(t)

	result := s.ValidateAll(map[string]string{
		"username":   "ab1",
		"rollNumber": "20071A0501",
		"password":   "abcdef",
		"department": "",
		"extra":      "x",
	})

	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("username"))
	assert.True(t, result.HasErrors("department"))
	assert.True(t, result.HasErrors("extra"))
	assert.False(t, result.HasErrors("rollNumber"))
	require.Len(t, result.GetErrorsForField("department"), 1)
	assert.Equal(t, "Department is required", result.GetErrorsForField("department")[0].Message)
	assert.Equal(t, "username: Username must be at least 4 characters", result.GetErrorMessages()[0])
}

func TestSchema_ValidateAllExtraFieldOrder(t *testing.T) {
	s := testSchema(t)
	values := map[string]string{
		"username":   "abcd1",
		"rollNumber": "20071A0501",
		"password":   "abcdef",
		"department": "IT",
		"zeta":       "1",
		"alpha":      "2",
		"mid":        "3",
		"beta":       "4",
	}

	for i := 0; i < 20; i++ {
		result := s.ValidateAll(values)
		require.Len(t, result.Errors, 4)
		got := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			assert.Equal(t, "extra_field", e.Code)
			got = append(got, e.Field)
		}
		assert.Equal(t, []string{"alpha", "beta", "mid", "zeta"}, got)
	}
}

func TestField_Required(t *testing.T) {
	s := testSchema(t)
	u, ok := s.Field("username")
	require.True(t, ok)
	assert.True(t, u.Required())
	e, ok := s.Field("email")
	require.True(t, ok)
	assert.False(t, e.Required())
}

func TestRule_LengthCountsRunes(t *testing.T) {
	assert.True(t, MinLength(4, "").Check("ñaña"))
	assert.True(t, ExactLength(2, "").Check("é1"))
	assert.False(t, MaxLength(3, "").Check(strings.Repeat("ü", 4)))
}

func TestCollegeEmail(t *testing.T) {
	assert.True(t, IsCollegeEmail("20151A0501@vnrvjiet.in", DefaultEmailDomain))
	assert.False(t, IsCollegeEmail("foo@gmail.com", DefaultEmailDomain))
	assert.False(t, IsCollegeEmail("foo@vnrvjietXin", DefaultEmailDomain))
	assert.Equal(t, "Please enter a valid example@vnrvjiet.in email.", CollegeEmailMessage(DefaultEmailDomain))
	assert.True(t, IsRollNumber("20155A12Ab"))
	assert.False(t, IsRollNumber("2015A12Ab"))
}
