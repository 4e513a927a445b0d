// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	PolicyRetain = "retain"
	PolicyClear  = "clear"
)

// Load reads configs/config.yaml, overlays config.<APP_ENVIRONMENT>.yaml and
// applies environment overrides such as BACKEND_BASE_URL.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{
		"app.environment", "backend.base_url", "backend.timeout",
		"mail.enabled", "mail.provider", "mail.aws_region", "mail.from_email",
		"logging.level", "logging.format", "metrics.enabled", "metrics.address",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg, v)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// Per-form enabled flags default to true unless the key is present.
func applyDefaults(cfg *Config, v *viper.Viper) {
	if cfg.App.Name == "" {
		cfg.App.Name = "campus-forms"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:6000"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 30000
	}

	if v == nil || !v.IsSet("forms.signin.enabled") {
		cfg.Forms.SignIn.Enabled = true
	}
	if cfg.Forms.SignIn.Endpoint == "" {
		cfg.Forms.SignIn.Endpoint = "/api/login"
	}
	if cfg.Forms.SignIn.SuccessRoute == "" {
		cfg.Forms.SignIn.SuccessRoute = "/home"
	}

	if v == nil || !v.IsSet("forms.signup.enabled") {
		cfg.Forms.SignUp.Enabled = true
	}
	if cfg.Forms.SignUp.Endpoint == "" {
		cfg.Forms.SignUp.Endpoint = "/api/register"
	}
	if cfg.Forms.SignUp.SuccessRoute == "" {
		cfg.Forms.SignUp.SuccessRoute = "/home"
	}
	if cfg.Forms.SignUp.DerivedEmailPolicy == "" {
		cfg.Forms.SignUp.DerivedEmailPolicy = PolicyRetain
	}
	if cfg.Forms.SignUp.EmailDomain == "" {
		cfg.Forms.SignUp.EmailDomain = "vnrvjiet.in"
	}

	if v == nil || !v.IsSet("forms.event_request.enabled") {
		cfg.Forms.EventRequest.Enabled = true
	}
	if cfg.Forms.EventRequest.EmailDomain == "" {
		cfg.Forms.EventRequest.EmailDomain = "vnrvjiet.in"
	}

	if len(cfg.Departments) == 0 {
		cfg.Departments = append([]string(nil), DefaultDepartments...)
	}

	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "log"
	}
	if cfg.Mail.AWSRegion == "" {
		cfg.Mail.AWSRegion = "ap-south-1"
	}
	if cfg.Mail.SubjectPrefix == "" {
		cfg.Mail.SubjectPrefix = "[Event Request]"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
}

// Default returns a fully defaulted configuration without reading files.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, nil)
	return cfg
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL")
	}
	if cfg.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}

	switch cfg.Forms.SignUp.DerivedEmailPolicy {
	case PolicyRetain, PolicyClear:
	default:
		return fmt.Errorf("forms.signup.derived_email_policy must be %q or %q", PolicyRetain, PolicyClear)
	}

	for i, d := range cfg.Departments {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("departments[%d] is empty", i)
		}
	}

	if cfg.Mail.Enabled {
		switch cfg.Mail.Provider {
		case "ses":
			if cfg.Mail.FromEmail == "" {
				return fmt.Errorf("mail.from_email is required for the ses provider")
			}
			if cfg.Mail.AWSRegion == "" {
				return fmt.Errorf("mail.aws_region is required for the ses provider")
			}
		case "log":
		default:
			return fmt.Errorf("mail.provider must be ses or log")
		}
	}

	return nil
}
