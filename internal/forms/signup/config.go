package signup

import (
	"fmt"
	"strings"

	"campus-forms/internal/common/config"
	"campus-forms/internal/common/validation"
	"campus-forms/internal/forms/derive"
)

type Config struct {
	Enabled            bool     `mapstructure:"enabled"`
	Endpoint           string   `mapstructure:"endpoint"`
	SuccessRoute       string   `mapstructure:"success_route"`
	DerivedEmailPolicy string   `mapstructure:"derived_email_policy"`
	EmailDomain        string   `mapstructure:"email_domain"`
	Departments        []string `mapstructure:"departments"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:            true,
		Endpoint:           "/api/register",
		SuccessRoute:       "/home",
		DerivedEmailPolicy: string(derive.Retain),
		EmailDomain:        validation.DefaultEmailDomain,
		Departments:        append([]string(nil), config.DefaultDepartments...),
	}
}

// FromAppConfig picks the sign-up section and the department list of the
// application config.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	form := cfg.Forms.SignUp
	out.Enabled = form.Enabled
	if form.Endpoint != "" {
		out.Endpoint = form.Endpoint
	}
	if form.SuccessRoute != "" {
		out.SuccessRoute = form.SuccessRoute
	}
	if form.DerivedEmailPolicy != "" {
		out.DerivedEmailPolicy = form.DerivedEmailPolicy
	}
	if form.EmailDomain != "" {
		out.EmailDomain = form.EmailDomain
	}
	if len(cfg.Departments) > 0 {
		out.Departments = append([]string(nil), cfg.Departments...)
	}
	return out
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Endpoint, "/") {
		return fmt.Errorf("endpoint must start with /")
	}
	if c.SuccessRoute == "" {
		return fmt.Errorf("success_route is required")
	}
	if _, err := derive.ParseStalePolicy(c.DerivedEmailPolicy); err != nil {
		return err
	}
	if c.EmailDomain == "" || strings.Contains(c.EmailDomain, "@") {
		return fmt.Errorf("email_domain must be a bare domain")
	}
	if len(c.Departments) == 0 {
		return fmt.Errorf("at least one department is required")
	}
	return nil
}
