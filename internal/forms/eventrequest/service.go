package eventrequest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-forms/internal/common/errors"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/forms/state"
)

// Service is one mounted conduct-event form with its save, download and send
// actions.
type Service struct {
	config     *Config
	logger     logger.Logger
	controller *state.Controller
	sender     *Sender

	mu    sync.Mutex
	saved *EventRequest
}

func NewService(deps ServiceDependencies, cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event request config: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	schema, err := GetSchema()
	if err != nil {
		return nil, err
	}
	ctrl, err := state.NewController(schema, state.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	return &Service{
		config:     cfg,
		logger:     log,
		controller: ctrl,
		sender:     NewSender(deps.Mailer, log, cfg),
	}, nil
}

func (s *Service) Controller() *state.Controller { return s.controller }

// OnFieldChange applies an edit. The saved copy, if any, is kept as it was.
func (s *Service) OnFieldChange(name, value string) error {
	return s.controller.OnFieldChange(name, value)
}

// Save records a copy of the current form contents for Download. Invalid
// contents are saved too, flagged by Valid.
func (s *Service) Save() *EventRequest {
	snap := s.controller.Snapshot()

	req := requestFromSnapshot(snap)
	req.ID = uuid.NewString()
	req.SavedAt = time.Now().UTC()

	s.mu.Lock()
	s.saved = &req
	s.mu.Unlock()

	s.logger.Info("Event request saved", map[string]interface{}{
		"requestId": req.ID,
		"event":     req.Event,
		"date":      req.Date,
		"valid":     req.Valid,
	})
	out := req
	return &out
}

func (s *Service) IsSaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved != nil
}

// Saved returns a copy of the saved request, nil when nothing is saved.
func (s *Service) Saved() *EventRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil
	}
	out := *s.saved
	return &out
}

// Download writes the saved request as indented JSON.
func (s *Service) Download(w io.Writer) error {
	req := s.Saved()
	if req == nil {
		return errors.NewEventRequestNotSavedError()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(req); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}

// Send mails the current form contents to email. Only the address is
// checked; form validity and the saved copy do not gate it. The saved copy's
// id, when there is one, is reused as the mail correlation id.
func (s *Service) Send(ctx context.Context, email string) (*SendOutput, error) {
	req := requestFromSnapshot(s.controller.Snapshot())
	if saved := s.Saved(); saved != nil {
		req.ID = saved.ID
	} else {
		req.ID = uuid.NewString()
	}
	return s.sender.Send(ctx, email, &req)
}
