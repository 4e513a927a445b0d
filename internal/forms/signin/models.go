package signin

import (
	"campus-forms/internal/common/logger"
	"campus-forms/internal/forms/gateway"
	"campus-forms/internal/forms/state"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func requestFromSnapshot(s state.Snapshot) interface{} {
	return LoginRequest{
		Username: s.Value(FieldUsername),
		Password: s.Value(FieldPassword),
	}
}

type Output struct {
	Success   bool   `json:"success"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ServiceDependencies struct {
	Logger  logger.Logger
	Gateway *gateway.Gateway
}
