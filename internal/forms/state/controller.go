// Package state holds per-form field values, messages and aggregate validity,
// and notifies subscribers after every mutation.
package state

import (
	"fmt"
	"sync"

	"campus-forms/internal/common/errors"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/metrics"
	"campus-forms/internal/common/validation"
	"campus-forms/internal/forms/derive"
)

// Listener receives a snapshot after each state change.
type Listener func(Snapshot)

type Options struct {
	Derivations *derive.Set
	Logger      logger.Logger
}

type subscription struct {
	id int
	fn Listener
}

// Controller owns the state of one form instance. Methods are safe for use
// from multiple goroutines, but listeners run on the mutating goroutine.
type Controller struct {
	mu          sync.Mutex
	schema      *validation.Schema
	derivations *derive.Set
	logger      logger.Logger

	fields     map[string]*FieldState
	order      []string
	valid      bool
	submitting bool
	submitErr  error
	version    uint64

	subs   []subscription
	nextID int
}

// NewController mounts a form: every field starts empty and is validated
// once, so required fields begin invalid.
func NewController(schema *validation.Schema, opts Options) (*Controller, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	for _, target := range opts.Derivations.Targets() {
		if _, ok := schema.Field(target); !ok {
			return nil, fmt.Errorf("schema %s: derivation target %q is not a field", schema.Name(), target)
		}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	c := &Controller{
		schema:      schema,
		derivations: opts.Derivations,
		logger:      log.WithFields(map[string]interface{}{"form": schema.Name()}),
		fields:      make(map[string]*FieldState),
	}
	for _, f := range schema.Fields() {
		res := schema.Validate(f.Name, "")
		c.fields[f.Name] = &FieldState{
			Name:      f.Name,
			Valid:     res.Valid,
			Message:   res.Message,
			Code:      res.Code,
			Required:  f.Required(),
			ReadOnly:  f.ReadOnly,
			Sensitive: f.Sensitive,
		}
		c.order = append(c.order, f.Name)
	}
	c.recompute()
	return c, nil
}

func (c *Controller) Form() string { return c.schema.Name() }

func (c *Controller) Schema() *validation.Schema { return c.schema }

// OnFieldChange applies a user edit. A value that fails its rules is not an
// error: the message is recorded on the field. Errors are returned only for
// edits the form refuses (unknown or read-only fields).
func (c *Controller) OnFieldChange(name, value string) error {
	c.mu.Lock()
	f, ok := c.fields[name]
	if !ok {
		c.mu.Unlock()
		return errors.NewUnknownFieldError(c.schema.Name(), name)
	}
	if f.ReadOnly {
		c.mu.Unlock()
		return errors.NewFieldReadOnlyError(name)
	}

	c.set(f, value)
	for _, out := range c.derivations.Apply(name, value, c.valueLocked) {
		if out.Changed {
			c.set(c.fields[out.Target], out.Value)
		}
	}
	c.recompute()
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	metrics.FormFieldChanges.WithLabelValues(snap.Form, name, metrics.BoolLabel(snap.Fields[name].Valid)).Inc()
	c.logger.Debug("Field changed", map[string]interface{}{
		"field":     name,
		"valid":     snap.Fields[name].Valid,
		"formValid": snap.Valid,
		"values":    logger.RedactValues(snap.Values(), snap.Sensitive()),
	})
	c.notify(snap)
	return nil
}

func (c *Controller) set(f *FieldState, value string) {
	res := c.schema.Validate(f.Name, value)
	f.Value = value
	f.Valid = res.Valid
	f.Message = res.Message
	f.Code = res.Code
	f.Touched = true
}

func (c *Controller) valueLocked(name string) string {
	if f, ok := c.fields[name]; ok {
		return f.Value
	}
	return ""
}

// recompute sets aggregate validity as the AND of every field's validity.
// Optional fields are valid when empty, so this is the AND of required
// fields plus any optional field holding a bad value.
func (c *Controller) recompute() {
	valid := true
	for _, name := range c.order {
		if !c.fields[name].Valid {
			valid = false
			break
		}
	}
	c.valid = valid
}

// Snapshot returns an immutable copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	fields := make(map[string]FieldState, len(c.fields))
	for name, f := range c.fields {
		fields[name] = *f
	}
	order := make([]string, len(c.order))
	copy(order, c.order)
	snap := Snapshot{
		Form:       c.schema.Name(),
		Fields:     fields,
		Order:      order,
		Valid:      c.valid,
		Submitting: c.submitting,
		Version:    c.version,
	}
	if c.submitErr != nil {
		snap.SubmitError = errors.UserMessage(c.submitErr)
		snap.SubmitErrorCode = string(errors.CodeOf(c.submitErr))
	}
	return snap
}

func (c *Controller) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valueLocked(name)
}

func (c *Controller) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid
}

// IsSubmittable is true iff the form is valid and no submission is pending.
func (c *Controller) IsSubmittable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid && !c.submitting
}

// SubmitError is the error of the last finished submission, if any.
func (c *Controller) SubmitError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitErr
}

// BeginSubmit marks a submission as pending. It fails when one is already
// pending or the form is invalid; on success the returned snapshot is the
// state being submitted.
func (c *Controller) BeginSubmit() (Snapshot, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Snapshot{}, errors.NewSubmissionInFlightError(c.schema.Name())
	}
	if !c.valid {
		c.mu.Unlock()
		return Snapshot{}, errors.NewFormSubmissionBlockedError(c.schema.Name())
	}
	c.submitting = true
	c.submitErr = nil
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	metrics.FormSubmissionsActive.WithLabelValues(snap.Form).Inc()
	c.notify(snap)
	return snap, nil
}

// FinishSubmit ends the pending submission. A non-nil err becomes the
// visible submit error.
func (c *Controller) FinishSubmit(err error) {
	c.mu.Lock()
	if !c.submitting {
		c.mu.Unlock()
		return
	}
	c.submitting = false
	c.submitErr = err
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	metrics.FormSubmissionsActive.WithLabelValues(snap.Form).Dec()
	c.notify(snap)
}

// Subscribe registers fn and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.mu.Lock()
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}
