package eventrequest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-forms/internal/common/config"
	"campus-forms/internal/common/errors"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/mail"
)

// ==========================
// Mock Mailer
// ==========================

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *mail.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *MockMailer) Provider() string { return "mock" }

// ==========================
// Test Helpers
// ==========================

func createValidInput() map[string]string {
	return map[string]string{
		FieldDepartment:     "CSI Club",
		FieldSubject:        "Permission for hackathon",
		FieldEvent:          "HackVNR",
		FieldVenue:          "Auditorium",
		FieldDate:           "2026-11-20",
		FieldDetail:         "24 hour <b>hackathon</b><script>alert(1)</script>",
		FieldAdditionalInfo: "",
	}
}

func newTestService(t *testing.T, mailer mail.Mailer) *Service {
	t.Helper()
	svc, err := NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), Mailer: mailer}, DefaultConfig())
	require.NoError(t, err)
	return svc
}

func fill(t *testing.T, svc *Service, values map[string]string) {
	t.Helper()
	for _, name := range []string{FieldDepartment, FieldSubject, FieldEvent, FieldVenue, FieldDate, FieldDetail, FieldAdditionalInfo} {
		require.NoError(t, svc.OnFieldChange(name, values[name]))
	}
}

// ==========================
// Schema Tests
// ==========================

func TestGetSchema(t *testing.T) {
	schema, err := GetSchema()
	require.NoError(t, err)
	assert.Equal(t, FormName, schema.Name())

	tests := []struct {
		name    string
		field   string
		value   string
		valid   bool
		message string
	}{
		{name: "dep empty", field: FieldDepartment, value: "", message: "Department/Club is required"},
		{name: "subject empty", field: FieldSubject, value: "", message: "Subject is required"},
		{name: "event empty", field: FieldEvent, value: "", message: "Event name is required"},
		{name: "venue empty", field: FieldVenue, value: "", message: "Venue is required"},
		{name: "date empty", field: FieldDate, value: "", message: "Event date is required"},
		{name: "date wrong format", field: FieldDate, value: "20/11/2026", message: "Event date must be in YYYY-MM-DD format"},
		{name: "date valid", field: FieldDate, value: "2026-11-20", valid: true},
		{name: "detail optional", field: FieldDetail, value: "", valid: true},
		{name: "detail too long", field: FieldDetail, value: strings.Repeat("x", 2001), message: "Details must be at most 2000 characters"},
		{name: "additional info optional", field: FieldAdditionalInfo, value: "", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := schema.Validate(tt.field, tt.value)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
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
		{name: "empty domain", modify: func(c *Config) { c.EmailDomain = "" }, wantErr: true, errMsg: "bare domain"},
		{name: "address as domain", modify: func(c *Config) { c.EmailDomain = "a@b.in" }, wantErr: true, errMsg: "bare domain"},
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
	app.Mail.FromEmail = "events@vnrvjiet.in"
	app.Mail.SubjectPrefix = "[VNR]"

	cfg := FromAppConfig(app)
	assert.Equal(t, "events@vnrvjiet.in", cfg.FromEmail)
	assert.Equal(t, "[VNR]", cfg.SubjectPrefix)
	assert.Equal(t, "vnrvjiet.in", cfg.EmailDomain)
	assert.True(t, cfg.Enabled)
}

// ==========================
// Save / Download Tests
// ==========================

func TestService_SaveRecordsCurrentContents(t *testing.T) {
	svc := newTestService(t, nil)

	input := createValidInput()
	input[FieldDate] = "tomorrow"
	fill(t, svc, input)

	saved := svc.Save()
	require.NotNil(t, saved)
	assert.False(t, saved.Valid)
	assert.Equal(t, "tomorrow", saved.Date)
	assert.True(t, svc.IsSaved())

	require.NoError(t, svc.OnFieldChange(FieldDate, "2026-11-20"))
	assert.True(t, svc.Save().Valid)
}

func TestService_SaveAndDownload(t *testing.T) {
	svc := newTestService(t, nil)

	var buf bytes.Buffer
	err := svc.Download(&buf)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEventRequestNotSaved, errors.CodeOf(err))

	fill(t, svc, createValidInput())
	saved := svc.Save()
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "HackVNR", saved.Event)
	assert.True(t, saved.Valid)
	assert.True(t, svc.IsSaved())

	require.NoError(t, svc.Download(&buf))
	assert.Contains(t, buf.String(), "\n  \"event\": \"HackVNR\"")

	var decoded EventRequest
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, saved.ID, decoded.ID)
	assert.Equal(t, "2026-11-20", decoded.Date)
	assert.Empty(t, decoded.AdditionalInfo)
}

func TestService_EditKeepsSavedCopy(t *testing.T) {
	svc := newTestService(t, nil)
	fill(t, svc, createValidInput())
	saved := svc.Save()

	require.Error(t, svc.OnFieldChange("organizer", "x"))
	require.NoError(t, svc.OnFieldChange(FieldVenue, "Seminar Hall"))

	assert.True(t, svc.IsSaved())
	kept := svc.Saved()
	require.NotNil(t, kept)
	assert.Equal(t, saved.ID, kept.ID)
	assert.Equal(t, "Auditorium", kept.Venue)
	assert.Equal(t, "Seminar Hall", svc.Controller().Value(FieldVenue))
}

// ==========================
// Send Tests
// ==========================

func TestService_SendEmailGate(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{name: "other domain", email: "foo@gmail.com", wantCode: errors.ErrCodeEmailPatternMismatch, wantMsg: "Please enter a valid example@vnrvjiet.in email."},
		{name: "subdomain", email: "foo@mail.vnrvjiet.in", wantCode: errors.ErrCodeEmailPatternMismatch, wantMsg: "Please enter a valid example@vnrvjiet.in email."},
		{name: "empty", email: "", wantCode: errors.ErrCodeEmailPatternMismatch, wantMsg: "Please enter a valid example@vnrvjiet.in email."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := new(MockMailer)
			svc := newTestService(t, mailer)

			_, err := svc.Send(context.Background(), tt.email)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, tt.wantMsg, errors.UserMessage(err))
			mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestSender_CheckEmail(t *testing.T) {
	sender := NewSender(nil, nil, DefaultConfig())

	assert.NoError(t, sender.CheckEmail("20151A0501@vnrvjiet.in"))
	assert.NoError(t, sender.CheckEmail("first.last+events@vnrvjiet.in"))
	assert.Error(t, sender.CheckEmail("20151A0501@vnrvjiet.in.evil.com"))
	assert.Error(t, sender.CheckEmail("20151A0501@vnrvjietXin"))
}

func TestService_Send(t *testing.T) {
	mailer := new(MockMailer)
	svc := newTestService(t, mailer)
	fill(t, svc, createValidInput())
	saved := svc.Save()

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *mail.Message) bool {
		return len(msg.To) == 1 && msg.To[0] == "20151A0501@vnrvjiet.in" &&
			msg.Subject == "[Event Request] Permission for hackathon" &&
			msg.CorrelationID == saved.ID &&
			strings.Contains(msg.TextBody, "Venue: Auditorium") &&
			strings.Contains(msg.HTMLBody, "<b>hackathon</b>") &&
			!strings.Contains(msg.HTMLBody, "<script>")
	})).Return("msg-42", nil).Once()

	out, err := svc.Send(context.Background(), "20151A0501@vnrvjiet.in")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "msg-42", out.MessageID)
	assert.Equal(t, "mock", out.Provider)
	mailer.AssertExpectations(t)
}

func TestService_SendMailFailure(t *testing.T) {
	mailer := new(MockMailer)
	svc := newTestService(t, mailer)
	fill(t, svc, createValidInput())

	mailer.On("Send", mock.Anything, mock.Anything).Return("", fmt.Errorf("smtp down")).Once()

	_, err := svc.Send(context.Background(), "20151A0501@vnrvjiet.in")
	require.Error(t, err)
	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMailSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "smtp down")
}

func TestService_SendWithLogMailer(t *testing.T) {
	svc := newTestService(t, mail.NewLogMailer(logger.NewTestLogger(t)))
	fill(t, svc, createValidInput())

	out, err := svc.Send(context.Background(), "events.team@vnrvjiet.in")
	require.NoError(t, err)
	assert.Equal(t, "log", out.Provider)
	assert.True(t, strings.HasPrefix(out.MessageID, "log-"))
}

func TestService_SendIgnoresFormValidityAndSaveState(t *testing.T) {
	mailer := new(MockMailer)
	svc := newTestService(t, mailer)
	require.False(t, svc.Controller().IsValid())
	require.False(t, svc.IsSaved())

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *mail.Message) bool {
		return msg.To[0] == "20151A0501@vnrvjiet.in" &&
			msg.Subject == "[Event Request]" &&
			msg.CorrelationID != ""
	})).Return("msg-1", nil).Once()

	out, err := svc.Send(context.Background(), "20151A0501@vnrvjiet.in")
	require.NoError(t, err)
	assert.True(t, out.Success)
	mailer.AssertExpectations(t)
}

func TestService_SendMailsCurrentContents(t *testing.T) {
	mailer := new(MockMailer)
	svc := newTestService(t, mailer)
	fill(t, svc, createValidInput())
	saved := svc.Save()
	require.NoError(t, svc.OnFieldChange(FieldVenue, "Seminar Hall"))

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *mail.Message) bool {
		return msg.CorrelationID == saved.ID &&
			strings.Contains(msg.TextBody, "Venue: Seminar Hall")
	})).Return("msg-2", nil).Once()

	_, err := svc.Send(context.Background(), "20151A0501@vnrvjiet.in")
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}
