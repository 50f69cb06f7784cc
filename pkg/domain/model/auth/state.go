package auth

import (
	"slices"

	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
)

// Status is the session lifecycle position
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusError          Status = "error"
)

// Operation names a session manager operation. Each has its own loading flag.
type Operation string

const (
	OpRestore        Operation = "restore"
	OpLogin          Operation = "login"
	OpRegister       Operation = "register"
	OpRefresh        Operation = "refresh"
	OpFetchUser      Operation = "fetch_user"
	OpForgotPassword Operation = "forgot_password"
	OpResetPassword  Operation = "reset_password"
	OpUpdateProfile  Operation = "update_profile"
	OpChangePassword Operation = "change_password"
)

// State is a snapshot of the session manager
type State struct {
	Status  Status      `json:"status"`
	User    *user.User  `json:"user,omitempty"`
	Failure *Failure    `json:"error,omitempty"`
	Pending []Operation `json:"pending,omitempty"`
}

// IsAuthenticated reports whether a current user is known
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// IsLoading reports whether the operation is in flight. Consumers disable the
// control that triggers op while this is true.
func (s State) IsLoading(op Operation) bool {
	return slices.Contains(s.Pending, op)
}

// Clone returns a deep enough copy for handing out to subscribers
func (s State) Clone() State {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	if s.Failure != nil {
		f := *s.Failure
		c.Failure = &f
	}
	c.Pending = slices.Clone(s.Pending)
	return c
}
