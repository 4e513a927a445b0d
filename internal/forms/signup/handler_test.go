package signup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-forms/internal/common/config"
	"campus-forms/internal/common/errors"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/forms/gateway"
	"campus-forms/internal/forms/state"
)

// ==========================
// Mock Submitter
// ==========================

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitForm(ctx context.Context, ctrl *state.Controller, sub gateway.Submission) (*gateway.Result, error) {
	args := m.Called(ctx, ctrl, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Result), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createValidInput() map[string]string {
	return map[string]string{
		FieldFirstName:  "Ravi",
		FieldLastName:   "Kumar",
		FieldUsername:   "ravi2015",
		FieldRollNumber: "20151A0501",
		FieldDepartment: "CSE",
		FieldPassword:   "secret12",
	}
}

func fill(t *testing.T, svc *Service, values map[string]string) {
	t.Helper()
	for _, name := range []string{FieldFirstName, FieldLastName, FieldUsername, FieldRollNumber, FieldDepartment, FieldPassword} {
		if v, ok := values[name]; ok {
			require.NoError(t, svc.OnFieldChange(name, v))
		}
	}
}

func newTestService(t *testing.T, cfg *Config) (*Service, *MockSubmitter) {
	t.Helper()
	submitter := new(MockSubmitter)
	svc, err := newService(logger.NewTestLogger(t), submitter, cfg)
	require.NoError(t, err)
	return svc, submitter
}

// ==========================
// Schema Tests
// ==========================

func TestGetSchema_Rules(t *testing.T) {
	schema, err := GetSchema(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name    string
		field   string
		value   string
		valid   bool
		message string
	}{
		{name: "first name digits", field: FieldFirstName, value: "Ravi1", message: "Only alphabets are allowed"},
		{name: "first name short", field: FieldFirstName, value: "Rav", message: "First Name must be at least 4 characters"},
		{name: "first name empty", field: FieldFirstName, value: "", message: "First Name is required"},
		{name: "first name valid", field: FieldFirstName, value: "Ravi", valid: true},
		{name: "last name short", field: FieldLastName, value: "Ku", message: "Last Name must be at least 4 characters"},
		{name: "last name space", field: FieldLastName, value: "Ku mar", message: "Only alphabets are allowed"},
		{name: "username short", field: FieldUsername, value: "ab1", message: "Username must be at least 4 characters"},
		{name: "username symbol", field: FieldUsername, value: "ab!1", message: "Alphabets and digits only"},
		{name: "username valid", field: FieldUsername, value: "abcd1", valid: true},
		{name: "roll short", field: FieldRollNumber, value: "20151A050", message: "Invalid roll number format"},
		{name: "roll long", field: FieldRollNumber, value: "20151A05011", message: "Invalid roll number format"},
		{name: "roll bad branch", field: FieldRollNumber, value: "20153A0501", message: "Invalid roll number format"},
		{name: "roll empty", field: FieldRollNumber, value: "", message: "Roll number is required"},
		{name: "roll valid", field: FieldRollNumber, value: "20155A05AB", valid: true},
		{name: "department unknown", field: FieldDepartment, value: "ART", message: "Please select a valid department"},
		{name: "department empty", field: FieldDepartment, value: "", message: "Department is required"},
		{name: "department valid", field: FieldDepartment, value: "ECE", valid: true},
		{name: "email other domain", field: FieldEmail, value: "foo@gmail.com", message: "Please enter a valid example@vnrvjiet.in email."},
		{name: "email empty", field: FieldEmail, value: "", valid: true},
		{name: "password short", field: FieldPassword, value: "abc", message: "Password must be between 6 and 12 characters"},
		{name: "password long", field: FieldPassword, value: "abcdefghijklm", message: "Password must be between 6 and 12 characters"},
		{name: "password valid", field: FieldPassword, value: "abcdef", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := schema.Validate(tt.field, tt.value)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestGetSchema_CustomDepartments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Departments = []string{"ART"}
	schema, err := GetSchema(cfg)
	require.NoError(t, err)
	assert.True(t, schema.Validate(FieldDepartment, "ART").Valid)
	assert.False(t, schema.Validate(FieldDepartment, "CSE").Valid)
}

// ==========================
// Config Tests
// ==========================

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{name: "default config", modify: func(c *Config) {}},
		{name: "clear policy", modify: func(c *Config) { c.DerivedEmailPolicy = "clear" }},
		{name: "unknown policy", modify: func(c *Config) { c.DerivedEmailPolicy = "keep" }, wantErr: true, errMsg: "unknown derived value policy"},
		{name: "domain with at", modify: func(c *Config) { c.EmailDomain = "@vnrvjiet.in" }, wantErr: true, errMsg: "bare domain"},
		{name: "no departments", modify: func(c *Config) { c.Departments = nil }, wantErr: true, errMsg: "at least one department"},
		{name: "relative endpoint", modify: func(c *Config) { c.Endpoint = "register" }, wantErr: true, errMsg: "endpoint must start with /"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	app := config.Default()
	app.Forms.SignUp.DerivedEmailPolicy = "clear"
	app.Departments = []string{"CSE", "IT"}

	cfg := FromAppConfig(app)
	assert.Equal(t, "clear", cfg.DerivedEmailPolicy)
	assert.Equal(t, []string{"CSE", "IT"}, cfg.Departments)
	assert.Equal(t, "/api/register", cfg.Endpoint)
	assert.Equal(t, "vnrvjiet.in", cfg.EmailDomain)
}

// ==========================
// Service Tests
// ==========================

func TestService_DerivesEmail(t *testing.T) {
	svc, _ := newTestService(t, nil)

	require.NoError(t, svc.OnFieldChange(FieldRollNumber, "20151A0501"))
	assert.Equal(t, "20151A0501@vnrvjiet.in", svc.Controller().Value(FieldEmail))

	err := svc.OnFieldChange(FieldEmail, "someone@vnrvjiet.in")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFieldReadOnly, errors.CodeOf(err))
	assert.Equal(t, "20151A0501@vnrvjiet.in", svc.Controller().Value(FieldEmail))

	require.NoError(t, svc.OnFieldChange(FieldRollNumber, "2015"))
	assert.Equal(t, "20151A0501@vnrvjiet.in", svc.Controller().Value(FieldEmail), "retain policy keeps the stale email")
}

func TestService_ClearPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DerivedEmailPolicy = "clear"
	svc, _ := newTestService(t, cfg)

	require.NoError(t, svc.OnFieldChange(FieldRollNumber, "20151A0501"))
	require.NoError(t, svc.OnFieldChange(FieldRollNumber, "20151A050"))
	assert.Empty(t, svc.Controller().Value(FieldEmail))
}

func TestService_AggregateValidity(t *testing.T) {
	svc, _ := newTestService(t, nil)
	fill(t, svc, createValidInput())
	require.True(t, svc.Controller().IsValid())

	for field := range createValidInput() {
		t.Run(field, func(t *testing.T) {
			input := createValidInput()
			svc, _ := newTestService(t, nil)
			fill(t, svc, input)
			require.NoError(t, svc.OnFieldChange(field, ""))
			assert.False(t, svc.Controller().IsValid())
		})
	}
}

func TestService_Submit(t *testing.T) {
	svc, submitter := newTestService(t, nil)
	fill(t, svc, createValidInput())

	submitter.On("SubmitForm", mock.Anything, svc.Controller(), mock.MatchedBy(func(sub gateway.Submission) bool {
		if sub.Endpoint.Path != "/api/register" || sub.Endpoint.SuccessRoute != "/home" || sub.Build == nil {
			return false
		}
		body := sub.Build(svc.Controller().Snapshot()).(RegisterRequest)
		return body == RegisterRequest{
			FirstName:  "Ravi",
			LastName:   "Kumar",
			Username:   "ravi2015",
			RollNumber: "20151A0501",
			Department: "CSE",
			Email:      "20151A0501@vnrvjiet.in",
			Password:   "secret12",
		}
	})).Return(&gateway.Result{Form: FormName, RequestID: "req-1", Redirect: "/home"}, nil).Once()

	out, err := svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Output{Success: true, Email: "20151A0501@vnrvjiet.in", Redirect: "/home", RequestID: "req-1"}, out)
	submitter.AssertExpectations(t)
}

func TestService_SubmitError(t *testing.T) {
	svc, submitter := newTestService(t, nil)
	fill(t, svc, createValidInput())

	submitter.On("SubmitForm", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.NewSubmissionRejectedError("/api/register", 409, "Username already taken")).Once()

	out, err := svc.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, "Username already taken", errors.UserMessage(err))
}

func TestService_Departments(t *testing.T) {
	svc, _ := newTestService(t, nil)
	deps := svc.Departments()
	assert.Equal(t, config.DefaultDepartments, deps)

	deps[0] = "changed"
	assert.Equal(t, "CSE", svc.Departments()[0])
}
