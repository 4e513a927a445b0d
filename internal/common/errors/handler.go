package errors

// ErrorHandler normalizes and logs errors that end a user action.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err to a StandardError, logs it with fields, and returns
// it so callers can surface UserMessage to the form.
func (h *ErrorHandler) Handle(err error, msg string, fields map[string]interface{}) *StandardError {
	stdErr := h.normalizeError(err)
	h.logError(msg, stdErr, fields)
	return stdErr
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) logError(msg string, stdErr *StandardError, fields map[string]interface{}) {
	if h.logger == nil {
		return
	}
	entry := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range fields {
		entry[k] = v
	}
	h.logger.Error(msg, entry)
}
