package auth

// FailureKind classifies a session operation failure
type FailureKind string

const (
	FailureSessionExpired     FailureKind = "session_expired"
	FailureInvalidCredentials FailureKind = "invalid_credentials"
	FailureValidation         FailureKind = "validation"
	FailureConflict           FailureKind = "conflict"
	FailureInvalidToken       FailureKind = "invalid_token"
	FailureWrongPassword      FailureKind = "wrong_password"
	FailureNetwork            FailureKind = "network"
	FailureServer             FailureKind = "server"
	FailureBusy               FailureKind = "busy"
	FailureUnknown            FailureKind = "unknown"
)

// Failure is the single user-facing error value held by the session manager
type Failure struct {
	Kind       FailureKind `json:"kind"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code,omitempty"`
	Err        error       `json:"-"`
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}
