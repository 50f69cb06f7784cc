package auth

import "errors"

var (
	// Credential errors
	ErrCredentialNotFound = errors.New("credential not found")
	ErrInvalidCredential  = errors.New("invalid credential")

	// Token errors
	ErrMalformedToken = errors.New("malformed access token")
)
