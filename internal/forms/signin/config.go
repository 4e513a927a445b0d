package signin

import (
	"fmt"
	"strings"

	"campus-forms/internal/common/config"
)

type Config struct {
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	SuccessRoute string `mapstructure:"success_route"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		Endpoint:     "/api/login",
		SuccessRoute: "/home",
	}
}

// FromAppConfig picks the sign-in section of the application config.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	form := cfg.Forms.SignIn
	out.Enabled = form.Enabled
	if form.Endpoint != "" {
		out.Endpoint = form.Endpoint
	}
	if form.SuccessRoute != "" {
		out.SuccessRoute = form.SuccessRoute
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
	return nil
}
