package signin

import (
	"context"
	"fmt"

	"campus-forms/internal/common/logger"
	"campus-forms/internal/forms/gateway"
	"campus-forms/internal/forms/state"
)

// Submitter is the part of the gateway the form uses.
type Submitter interface {
	SubmitForm(ctx context.Context, ctrl *state.Controller, sub gateway.Submission) (*gateway.Result, error)
}

// Service is one mounted sign-in form.
type Service struct {
	config     *Config
	logger     logger.Logger
	gateway    Submitter
	controller *state.Controller
}

func NewService(deps ServiceDependencies, cfg *Config) (*Service, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	return newService(deps.Logger, deps.Gateway, cfg)
}

func newService(log logger.Logger, submitter Submitter, cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signin config: %w", err)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ctrl, err := state.NewController(GetSchema(), state.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	return &Service{config: cfg, logger: log, gateway: submitter, controller: ctrl}, nil
}

func (s *Service) Controller() *state.Controller { return s.controller }

func (s *Service) OnFieldChange(name, value string) error {
	return s.controller.OnFieldChange(name, value)
}

// Submit posts the credentials. Failures are also recorded on the controller
// as the visible submit error.
func (s *Service) Submit(ctx context.Context) (*Output, error) {
	result, err := s.gateway.SubmitForm(ctx, s.controller, gateway.Submission{
		Endpoint: gateway.Endpoint{Path: s.config.Endpoint, SuccessRoute: s.config.SuccessRoute},
		Build:    requestFromSnapshot,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User signed in", map[string]interface{}{
		"username":  s.controller.Value(FieldUsername),
		"requestId": result.RequestID,
	})
	return &Output{Success: true, Redirect: result.Redirect, RequestID: result.RequestID}, nil
}
