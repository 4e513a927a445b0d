// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig     `mapstructure:"app"`
	Backend     BackendConfig `mapstructure:"backend"`
	Forms       FormsConfig   `mapstructure:"forms"`
	Departments []string      `mapstructure:"departments"`
	Mail        MailConfig    `mapstructure:"mail"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points the submission gateway at the API server.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// --- Per-form Configuration ---

type FormsConfig struct {
	SignIn       FormConfig         `mapstructure:"signin"`
	SignUp       SignUpConfig       `mapstructure:"signup"`
	EventRequest EventRequestConfig `mapstructure:"event_request"`
}

// FormConfig holds the settings every submitting form shares.
type FormConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	SuccessRoute string `mapstructure:"success_route"`
}

type SignUpConfig struct {
	FormConfig         `mapstructure:",squash"`
	DerivedEmailPolicy string `mapstructure:"derived_email_policy"` // retain | clear
	EmailDomain        string `mapstructure:"email_domain"`
}

type EventRequestConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	EmailDomain string `mapstructure:"email_domain"`
}

// MailConfig configures the event-request mail collaborator.
type MailConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Provider      string `mapstructure:"provider"` // ses | log
	AWSRegion     string `mapstructure:"aws_region"`
	FromEmail     string `mapstructure:"from_email"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// DefaultDepartments is the department code set offered by the sign-up form.
var DefaultDepartments = []string{
	"CSE", "CSE-AIML", "CSE-DS", "CSE-CYS", "CSE-IOT", "CSBS", "IT",
	"ECE", "EEE", "EIE", "MECH", "CIVIL", "AE", "CHEM",
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
