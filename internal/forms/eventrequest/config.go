package eventrequest

import (
	"fmt"
	"strings"

	"campus-forms/internal/common/config"
	"campus-forms/internal/common/validation"
)

type Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	EmailDomain   string `mapstructure:"email_domain"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	FromEmail     string `mapstructure:"from_email"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		EmailDomain:   validation.DefaultEmailDomain,
		SubjectPrefix: "[Event Request]",
	}
}

// FromAppConfig merges the event request form section with the mail section.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	out.Enabled = cfg.Forms.EventRequest.Enabled
	if cfg.Forms.EventRequest.EmailDomain != "" {
		out.EmailDomain = cfg.Forms.EventRequest.EmailDomain
	}
	if cfg.Mail.SubjectPrefix != "" {
		out.SubjectPrefix = cfg.Mail.SubjectPrefix
	}
	out.FromEmail = cfg.Mail.FromEmail
	return out
}

func (c *Config) Validate() error {
	if c.EmailDomain == "" || strings.Contains(c.EmailDomain, "@") {
		return fmt.Errorf("email_domain must be a bare domain")
	}
	return nil
}
