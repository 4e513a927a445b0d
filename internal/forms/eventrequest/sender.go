package eventrequest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"campus-forms/internal/common/errors"
	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/mail"
	"campus-forms/internal/common/metrics"
	"campus-forms/internal/common/validation"
)

// Sender is the send action of the event form. It is gated by one address
// check, not by form validity.
type Sender struct {
	mailer        mail.Mailer
	logger        logger.Logger
	from          string
	subjectPrefix string
	emailRe       *regexp.Regexp
	emailMessage  string
	strict        *bluemonday.Policy
	rich          *bluemonday.Policy
}

func NewSender(mailer mail.Mailer, log logger.Logger, cfg *Config) *Sender {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Sender{
		mailer:        mailer,
		logger:        log,
		from:          cfg.FromEmail,
		subjectPrefix: cfg.SubjectPrefix,
		emailRe:       regexp.MustCompile(validation.CollegeEmailPattern(cfg.EmailDomain)),
		emailMessage:  validation.CollegeEmailMessage(cfg.EmailDomain),
		strict:        bluemonday.StrictPolicy(),
		rich:          bluemonday.UGCPolicy(),
	}
}

// CheckEmail returns EMAIL_PATTERN_MISMATCH carrying the UI copy when email
// is outside the college domain.
func (s *Sender) CheckEmail(email string) error {
	if !s.emailRe.MatchString(email) {
		return errors.NewEmailPatternError(email, s.emailMessage)
	}
	return nil
}

// Send mails req to email. The address check is the only gate; nothing is
// sent when it fails.
func (s *Sender) Send(ctx context.Context, email string, req *EventRequest) (*SendOutput, error) {
	if err := s.CheckEmail(email); err != nil {
		metrics.EventMailSends.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if req == nil {
		req = &EventRequest{}
	}
	if s.mailer == nil {
		return nil, errors.NewInternalError(fmt.Errorf("mailer is not configured"))
	}

	msg := s.compose(email, req)
	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		metrics.EventMailSends.WithLabelValues("failed").Inc()
		return nil, errors.NewMailSendFailedError(s.mailer.Provider(), err)
	}
	metrics.EventMailSends.WithLabelValues("sent").Inc()

	s.logger.Info("Event request mailed", map[string]interface{}{
		"to":        email,
		"requestId": req.ID,
		"messageId": id,
		"provider":  s.mailer.Provider(),
		"formValid": req.Valid,
	})
	return &SendOutput{
		Success:   true,
		MessageID: id,
		Provider:  s.mailer.Provider(),
		To:        email,
		SentAt:    time.Now().UTC(),
	}, nil
}

func (s *Sender) compose(to string, req *EventRequest) *mail.Message {
	subject := strings.TrimSpace(fmt.Sprintf("%s %s", s.subjectPrefix, req.Subject))
	if subject == "" {
		subject = "Event request"
	}

	rows := []struct{ label, value string }{
		{"Department/Club", req.Department},
		{"Event", req.Event},
		{"Venue", req.Venue},
		{"Date", req.Date},
	}

	var text, html strings.Builder
	html.WriteString("<h2>" + s.strict.Sanitize(req.Subject) + "</h2>\n<table>\n")
	for _, r := range rows {
		fmt.Fprintf(&text, "%s: %s\n", r.label, r.value)
		fmt.Fprintf(&html, "<tr><th>%s</th><td>%s</td></tr>\n", r.label, s.strict.Sanitize(r.value))
	}
	html.WriteString("</table>\n")

	if req.Detail != "" {
		fmt.Fprintf(&text, "\nDetails:\n%s\n", req.Detail)
		fmt.Fprintf(&html, "<h3>Details</h3>\n<p>%s</p>\n", s.rich.Sanitize(req.Detail))
	}
	if req.AdditionalInfo != "" {
		fmt.Fprintf(&text, "\nAdditional information:\n%s\n", req.AdditionalInfo)
		fmt.Fprintf(&html, "<h3>Additional information</h3>\n<p>%s</p>\n", s.rich.Sanitize(req.AdditionalInfo))
	}

	return &mail.Message{
		From:          s.from,
		To:            []string{to},
		Subject:       subject,
		TextBody:      text.String(),
		HTMLBody:      html.String(),
		CorrelationID: req.ID,
	}
}
