package signup

import (
	"campus-forms/internal/common/logger"
	"campus-forms/internal/forms/gateway"
	"campus-forms/internal/forms/state"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Username   string `json:"username"`
	RollNumber string `json:"rollNumber"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func requestFromSnapshot(s state.Snapshot) interface{} {
	return RegisterRequest{
		FirstName:  s.Value(FieldFirstName),
		LastName:   s.Value(FieldLastName),
		Username:   s.Value(FieldUsername),
		RollNumber: s.Value(FieldRollNumber),
		Department: s.Value(FieldDepartment),
		Email:      s.Value(FieldEmail),
		Password:   s.Value(FieldPassword),
	}
}

type Output struct {
	Success   bool   `json:"success"`
	Email     string `json:"email,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ServiceDependencies struct {
	Logger  logger.Logger
	Gateway *gateway.Gateway
}
