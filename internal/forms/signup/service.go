package signup

import (
	"context"
	"fmt"

	"campus-forms/internal/common/logger"
	"campus-forms/internal/forms/gateway"
	"campus-forms/internal/forms/state"
)

type Submitter interface {
	SubmitForm(ctx context.Context, ctrl *state.Controller, sub gateway.Submission) (*gateway.Result, error)
}

// Service is one mounted sign-up form.
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
		return nil, fmt.Errorf("invalid signup config: %w", err)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	schema, err := GetSchema(cfg)
	if err != nil {
		return nil, err
	}
	derivations, err := GetDerivations(cfg)
	if err != nil {
		return nil, err
	}
	ctrl, err := state.NewController(schema, state.Options{Derivations: derivations, Logger: log})
	if err != nil {
		return nil, err
	}
	return &Service{config: cfg, logger: log, gateway: submitter, controller: ctrl}, nil
}

func (s *Service) Controller() *state.Controller { return s.controller }

// Departments is the selectable department set.
func (s *Service) Departments() []string {
	return append([]string(nil), s.config.Departments...)
}

func (s *Service) OnFieldChange(name, value string) error {
	return s.controller.OnFieldChange(name, value)
}

// Submit registers the student with every sign-up field, including the
// derived email.
func (s *Service) Submit(ctx context.Context) (*Output, error) {
	result, err := s.gateway.SubmitForm(ctx, s.controller, gateway.Submission{
		Endpoint: gateway.Endpoint{Path: s.config.Endpoint, SuccessRoute: s.config.SuccessRoute},
		Build:    requestFromSnapshot,
	})
	if err != nil {
		return nil, err
	}

	email := s.controller.Value(FieldEmail)
	s.logger.Info("User registered", map[string]interface{}{
		"username":   s.controller.Value(FieldUsername),
		"rollNumber": s.controller.Value(FieldRollNumber),
		"requestId":  result.RequestID,
	})
	return &Output{Success: true, Email: email, Redirect: result.Redirect, RequestID: result.RequestID}, nil
}
