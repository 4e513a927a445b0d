package eventrequest

import (
	"time"

	"campus-forms/internal/common/logger"
	"campus-forms/internal/common/mail"
	"campus-forms/internal/forms/state"
)

// EventRequest is the content of a conduct-event form at save or send time.
type EventRequest struct {
	ID             string    `json:"id"`
	Department     string    `json:"dep"`
	Subject        string    `json:"subject"`
	Event          string    `json:"event"`
	Venue          string    `json:"venue"`
	Date           string    `json:"evedate"`
	Detail         string    `json:"detail,omitempty"`
	AdditionalInfo string    `json:"additionalinfo,omitempty"`
	Valid          bool      `json:"valid"`
	SavedAt        time.Time `json:"savedAt"`
}

func requestFromSnapshot(s state.Snapshot) EventRequest {
	return EventRequest{
		Department:     s.Value(FieldDepartment),
		Subject:        s.Value(FieldSubject),
		Event:          s.Value(FieldEvent),
		Venue:          s.Value(FieldVenue),
		Date:           s.Value(FieldDate),
		Detail:         s.Value(FieldDetail),
		AdditionalInfo: s.Value(FieldAdditionalInfo),
		Valid:          s.Valid,
	}
}

type SendOutput struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	To        string    `json:"to"`
	SentAt    time.Time `json:"sentAt"`
}

type ServiceDependencies struct {
	Logger logger.Logger
	Mailer mail.Mailer
}
