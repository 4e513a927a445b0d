// Package gateway turns a valid form snapshot into one outbound request and
// interprets the response.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campus-forms/internal/common/errors"
	chttp "campus-forms/internal/common/http"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/metrics"
	"campus-forms/internal/common/observability"
	"campus-forms/internal/common/validation"
	"campus-forms/internal/forms/state"
)

const tracerName = "campus-forms/gateway"

// Outcome labels for submission metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeTransport = "transport_error"
	OutcomeRejected  = "rejected"
)

// Transport sends one JSON request. A non-2xx response is returned, not an
// error.
type Transport interface {
	PostJSON(ctx context.Context, path string, body interface{}, requestID string) (*chttp.Response, error)
}

type Endpoint struct {
	Path         string
	SuccessRoute string
}

// Submission is one submit action. The request body is Payload, else the
// result of Build, else the Fields of the snapshot as a JSON object.
type Submission struct {
	Form     string
	Endpoint Endpoint
	Schema   *validation.Schema
	Snapshot state.Snapshot
	Fields   []string
	Payload  interface{}
	Build    func(state.Snapshot) interface{}
}

// Result is a successful submission. Redirect is the route to navigate to.
type Result struct {
	Form       string                 `json:"form"`
	RequestID  string                 `json:"requestId"`
	Redirect   string                 `json:"redirect"`
	StatusCode int                    `json:"statusCode"`
	Body       map[string]interface{} `json:"body,omitempty"`
}

type Dependencies struct {
	Transport     Transport
	Logger        logger.Logger
	Observability *observability.Observability
}

// Gateway performs exactly one request per Submit call and never retries.
type Gateway struct {
	transport  Transport
	logger     logger.Logger
	obs        *observability.Observability
	tracer     trace.Tracer
	errHandler *errors.ErrorHandler
}

func New(deps Dependencies) (*Gateway, error) {
	if deps.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Gateway{
		transport:  deps.Transport,
		logger:     log,
		obs:        deps.Observability,
		tracer:     deps.Observability.Tracer(tracerName),
		errHandler: errors.NewErrorHandler(log),
	}, nil
}

// Submit re-validates the snapshot and the marshalled payload, then sends it.
// Invalid data fails fast with PAYLOAD_VALIDATION_FAILED and nothing is sent.
func (g *Gateway) Submit(ctx context.Context, sub Submission) (*Result, error) {
	requestID := uuid.NewString()
	ctx, span := g.tracer.Start(ctx, "gateway.submit", trace.WithAttributes(
		attribute.String("form.name", sub.Form),
		attribute.String("http.route", sub.Endpoint.Path),
		attribute.String("request.id", requestID),
	))
	defer span.End()

	start := time.Now()
	fields := map[string]interface{}{
		"form":      sub.Form,
		"endpoint":  sub.Endpoint.Path,
		"requestId": requestID,
	}

	payload, err := g.verify(sub)
	if err != nil {
		return nil, g.fail(ctx, span, sub.Form, OutcomeInvalid, start, err, fields)
	}

	g.logger.Info("Submitting form", fields)

	resp, err := g.transport.PostJSON(ctx, sub.Endpoint.Path, payload, requestID)
	if err != nil {
		return nil, g.fail(ctx, span, sub.Form, OutcomeTransport, start, errors.NewTransportError(sub.Endpoint.Path, err), fields)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !resp.OK() {
		rejected := errors.NewSubmissionRejectedError(sub.Endpoint.Path, resp.StatusCode, resp.Reason())
		return nil, g.fail(ctx, span, sub.Form, OutcomeRejected, start, rejected, fields)
	}

	g.record(ctx, sub.Form, OutcomeSuccess, start)
	span.SetStatus(codes.Ok, "")
	fields["statusCode"] = resp.StatusCode
	fields["redirect"] = sub.Endpoint.SuccessRoute
	g.logger.Info("Form submitted successfully", fields)

	return &Result{
		Form:       sub.Form,
		RequestID:  requestID,
		Redirect:   sub.Endpoint.SuccessRoute,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}, nil
}

// SubmitForm runs the full submit action for a controller: it claims the
// submitting state, submits the current snapshot and records the outcome as
// the controller's visible submit error. A refused claim never reaches the
// transport.
func (g *Gateway) SubmitForm(ctx context.Context, ctrl *state.Controller, sub Submission) (*Result, error) {
	snap, err := ctrl.BeginSubmit()
	if err != nil {
		g.logger.Warn("Submission refused", map[string]interface{}{
			"form":      ctrl.Form(),
			"errorCode": string(errors.CodeOf(err)),
		})
		return nil, err
	}

	sub.Form = ctrl.Form()
	sub.Schema = ctrl.Schema()
	sub.Snapshot = snap

	result, err := g.Submit(ctx, sub)
	ctrl.FinishSubmit(err)
	return result, err
}

func (g *Gateway) verify(sub Submission) (interface{}, error) {
	if sub.Schema == nil {
		return nil, errors.NewInternalError(fmt.Errorf("form %s: schema is required", sub.Form))
	}

	values := sub.Snapshot.Values()
	checked := sub.Schema.ValidateAll(values)
	if !sub.Snapshot.Valid || !checked.Valid {
		problems := checked.GetErrorMessages()
		if len(problems) == 0 {
			problems = []string{"snapshot is not valid"}
		}
		return nil, errors.NewPayloadValidationError(sub.Form, problems)
	}

	payload := sub.Payload
	if payload == nil && sub.Build != nil {
		payload = sub.Build(sub.Snapshot)
	}
	if payload == nil {
		names := sub.Fields
		if len(names) == 0 {
			names = sub.Snapshot.Order
		}
		body := make(map[string]string, len(names))
		for _, name := range names {
			body[name] = values[name]
		}
		payload = body
	}

	verified, err := sub.Schema.VerifyPayload(payload, sub.Fields...)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !verified.Valid {
		return nil, errors.NewPayloadValidationError(sub.Form, verified.GetErrorMessages())
	}
	return payload, nil
}

func (g *Gateway) fail(ctx context.Context, span trace.Span, form, outcome string, start time.Time, err error, fields map[string]interface{}) error {
	g.record(ctx, form, outcome, start)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(errors.CodeOf(err)))
	return g.errHandler.Handle(err, "Form submission failed", fields)
}

func (g *Gateway) record(ctx context.Context, form, outcome string, start time.Time) {
	elapsed := time.Since(start)
	metrics.FormSubmissions.WithLabelValues(form, outcome).Inc()
	metrics.FormSubmissionDuration.WithLabelValues(form).Observe(elapsed.Seconds())
	g.obs.RecordSubmission(ctx, form, outcome, elapsed)
}
