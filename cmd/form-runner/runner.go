package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"campus-forms/internal/common/config"
	"campus-forms/internal/common/errors"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/mail"
	"campus-forms/internal/forms/eventrequest"
	"campus-forms/internal/forms/gateway"
	"campus-forms/internal/forms/signin"
	"campus-forms/internal/forms/signup"
	"campus-forms/internal/forms/state"
)

// Script is a recorded form session: field edits followed by actions.
type Script struct {
	Form  string `yaml:"form"`
	Steps []Step `yaml:"steps"`
}

// Step is either a field edit (Field/Value) or an Action.
type Step struct {
	Field  string `yaml:"field,omitempty"`
	Value  string `yaml:"value,omitempty"`
	Action string `yaml:"action,omitempty"`
	Email  string `yaml:"email,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

const (
	ActionSubmit   = "submit"
	ActionSave     = "save"
	ActionDownload = "download"
	ActionSend     = "send"
)

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if s.Form == "" {
		return nil, fmt.Errorf("parse script: form is required")
	}
	for i, step := range s.Steps {
		if (step.Field == "") == (step.Action == "") {
			return nil, fmt.Errorf("parse script: step %d needs exactly one of field or action", i)
		}
	}
	return &s, nil
}

// StepReport is one line of runner output.
type StepReport struct {
	Step      int         `json:"step"`
	Field     string      `json:"field,omitempty"`
	Action    string      `json:"action,omitempty"`
	OK        bool        `json:"ok"`
	ErrorCode string      `json:"errorCode,omitempty"`
	Error     string      `json:"error,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Form      *FormReport `json:"form,omitempty"`
}

// FormReport is a printable snapshot; sensitive values are masked.
type FormReport struct {
	Valid       bool                   `json:"valid"`
	Submittable bool                   `json:"submittable"`
	SubmitError string                 `json:"submitError,omitempty"`
	Errors      map[string]string      `json:"errors,omitempty"`
	Values      map[string]interface{} `json:"values"`
}

func reportOf(s state.Snapshot) *FormReport {
	return &FormReport{
		Valid:       s.Valid,
		Submittable: s.Submittable(),
		SubmitError: s.SubmitError,
		Errors:      s.Errors(),
		Values:      logger.RedactValues(s.Values(), s.Sensitive()),
	}
}

type form interface {
	OnFieldChange(name, value string) error
	Controller() *state.Controller
}

// Runner replays scripts against freshly mounted forms.
type Runner struct {
	cfg     *config.Config
	logger  logger.Logger
	gateway *gateway.Gateway
	mailer  mail.Mailer
	out     io.Writer
}

func NewRunner(cfg *config.Config, log logger.Logger, gw *gateway.Gateway, mailer mail.Mailer, out io.Writer) *Runner {
	return &Runner{cfg: cfg, logger: log, gateway: gw, mailer: mailer, out: out}
}

// Run replays script and writes one JSON report per step. Refused edits and
// failed actions are reported and do not stop the run.
func (r *Runner) Run(ctx context.Context, script *Script) error {
	f, actions, err := r.mount(script.Form)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(r.out)
	for i, step := range script.Steps {
		rep := StepReport{Step: i, Field: step.Field, Action: step.Action}

		var result interface{}
		if step.Field != "" {
			err = f.OnFieldChange(step.Field, step.Value)
		} else {
			act, ok := actions[step.Action]
			if !ok {
				return fmt.Errorf("step %d: form %s has no action %q", i, script.Form, step.Action)
			}
			result, err = act(ctx, step)
		}

		rep.OK = err == nil
		if err != nil {
			rep.ErrorCode = string(errors.CodeOf(err))
			rep.Error = errors.UserMessage(err)
		} else {
			rep.Result = result
		}
		rep.Form = reportOf(f.Controller().Snapshot())
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

type action func(ctx context.Context, step Step) (interface{}, error)

func (r *Runner) mount(name string) (form, map[string]action, error) {
	switch name {
	case signin.FormName:
		cfg := signin.FromAppConfig(r.cfg)
		if !cfg.Enabled {
			return nil, nil, fmt.Errorf("form %s is disabled", name)
		}
		svc, err := signin.NewService(signin.ServiceDependencies{Logger: r.logger, Gateway: r.gateway}, cfg)
		if err != nil {
			return nil, nil, err
		}
		return svc, map[string]action{
			ActionSubmit: func(ctx context.Context, _ Step) (interface{}, error) { return svc.Submit(ctx) },
		}, nil

	case signup.FormName:
		cfg := signup.FromAppConfig(r.cfg)
		if !cfg.Enabled {
			return nil, nil, fmt.Errorf("form %s is disabled", name)
		}
		svc, err := signup.NewService(signup.ServiceDependencies{Logger: r.logger, Gateway: r.gateway}, cfg)
		if err != nil {
			return nil, nil, err
		}
		return svc, map[string]action{
			ActionSubmit: func(ctx context.Context, _ Step) (interface{}, error) { return svc.Submit(ctx) },
		}, nil

	case eventrequest.FormName:
		cfg := eventrequest.FromAppConfig(r.cfg)
		if !cfg.Enabled {
			return nil, nil, fmt.Errorf("form %s is disabled", name)
		}
		svc, err := eventrequest.NewService(eventrequest.ServiceDependencies{Logger: r.logger, Mailer: r.mailer}, cfg)
		if err != nil {
			return nil, nil, err
		}
		return svc, map[string]action{
			ActionSave: func(context.Context, Step) (interface{}, error) { return svc.Save(), nil },
			ActionDownload: func(_ context.Context, step Step) (interface{}, error) {
				if step.Path == "" {
					return nil, svc.Download(r.out)
				}
				file, err := os.Create(step.Path)
				if err != nil {
					return nil, errors.NewInternalError(err)
				}
				defer file.Close()
				return map[string]string{"path": step.Path}, svc.Download(file)
			},
			ActionSend: func(ctx context.Context, step Step) (interface{}, error) { return svc.Send(ctx, step.Email) },
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown form %q", name)
}
